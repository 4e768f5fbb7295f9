package metadata

import (
	"context"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/conv"
)

const DefaultOMDbBaseURL = "https://www.omdbapi.com"

// OMDbClient 通过 IMDb ID 查询 imdbRating。
type OMDbClient struct {
	src    *httpSource
	apiKey string
}

func NewOMDbClient(apiKey string, opts ...Option) *OMDbClient {
	return &OMDbClient{
		src:    newHTTPSource("omdb", DefaultOMDbBaseURL, opts...),
		apiKey: apiKey,
	}
}

func (c *OMDbClient) Name() string { return "omdb" }

type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	IMDbRating string `json:"imdbRating"`
}

// Rating 返回 IMDb 评分；无此电影或评分为 "N/A" 时返回 NOT_FOUND。
func (c *OMDbClient) Rating(ctx context.Context, imdbID string) (float64, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return 0, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeInvalidInput, "omdb: empty imdb id")
	}
	body, err := c.src.get(ctx, "/", url.Values{"i": {imdbID}, "apikey": {c.apiKey}})
	if err != nil {
		return 0, err
	}
	var resp omdbResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeInternalError, "omdb: decode "+imdbID, err)
	}
	if strings.EqualFold(resp.Response, "False") {
		return 0, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound, "omdb: "+imdbID+": "+resp.Error)
	}
	rating, ok := conv.ToFloat64(resp.IMDbRating)
	if !ok || rating <= 0 {
		return 0, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound, "omdb: no rating for "+imdbID)
	}
	return rating, nil
}
