package metadata

import (
	"context"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/core"
)

const (
	DefaultTMDBBaseURL   = "https://api.themoviedb.org"
	DefaultTMDBImageBase = "https://image.tmdb.org/t/p/original/"
)

// TMDBClient 通过 /3/find/{wikidata_id}?external_source=wikidata_id 查询电影与人物。
type TMDBClient struct {
	src       *httpSource
	ImageBase string
}

// NewTMDBClient 使用 API Read Access Token（Bearer）创建客户端。
func NewTMDBClient(token string, opts ...Option) *TMDBClient {
	src := newHTTPSource("tmdb", DefaultTMDBBaseURL, opts...)
	if token != "" {
		src.header.Set("Authorization", "Bearer "+token)
	}
	return &TMDBClient{src: src, ImageBase: DefaultTMDBImageBase}
}

func (c *TMDBClient) Name() string { return "tmdb" }

type tmdbFindResponse struct {
	MovieResults  []tmdbMovie  `json:"movie_results"`
	PersonResults []tmdbPerson `json:"person_results"`
}

type tmdbMovie struct {
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	MediaType    string  `json:"media_type"`
}

type tmdbPerson struct {
	Popularity  float64 `json:"popularity"`
	ProfilePath string  `json:"profile_path"`
}

func (c *TMDBClient) find(ctx context.Context, uri string) (*tmdbFindResponse, error) {
	id := core.LocalID(uri)
	if id == "" {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeInvalidInput, "tmdb: empty wikidata id")
	}
	body, err := c.src.get(ctx, "/3/find/"+url.PathEscape(id), url.Values{"external_source": {"wikidata_id"}})
	if err != nil {
		return nil, err
	}
	var resp tmdbFindResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeInternalError, "tmdb: decode "+id, err)
	}
	return &resp, nil
}

// Movie 查询电影元数据，movie_results 为空时返回 NOT_FOUND。
func (c *TMDBClient) Movie(ctx context.Context, uri string) (*core.MovieMetadata, error) {
	resp, err := c.find(ctx, uri)
	if err != nil {
		return nil, err
	}
	if len(resp.MovieResults) == 0 {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound, "tmdb: no movie results for "+uri)
	}
	m := resp.MovieResults[0]
	md := &core.MovieMetadata{
		URI:        uri,
		MediaType:  m.MediaType,
		Popularity: m.Popularity,
		Poster:     PlaceholderPoster,
		Overview:   m.Overview,
		TMDBRating: m.VoteAverage,
	}
	if md.MediaType == "" {
		md.MediaType = DefaultMediaType
	}
	if m.PosterPath != "" {
		md.Poster = c.image(m.PosterPath)
	}
	if m.BackdropPath != "" {
		md.Backdrop = c.image(m.BackdropPath)
	}
	return md, nil
}

// Person 查询人物元数据，person_results 为空时返回 NOT_FOUND。
func (c *TMDBClient) Person(ctx context.Context, uri string) (*core.PersonMetadata, error) {
	resp, err := c.find(ctx, uri)
	if err != nil {
		return nil, err
	}
	if len(resp.PersonResults) == 0 {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound, "tmdb: no person results for "+uri)
	}
	p := resp.PersonResults[0]
	pm := &core.PersonMetadata{
		URI:        uri,
		Popularity: p.Popularity,
		Profile:    PlaceholderProfile,
	}
	if p.ProfilePath != "" {
		pm.Profile = c.image(p.ProfilePath)
	}
	return pm, nil
}

func (c *TMDBClient) image(path string) string {
	return strings.TrimSuffix(c.ImageBase, "/") + "/" + strings.TrimPrefix(path, "/")
}
