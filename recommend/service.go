// Package recommend 把推荐请求转换为种子集合，执行 Pipeline，并输出最终结果列表。
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
	"github.com/rushteam/movierec/pkg/utils"
	"github.com/rushteam/movierec/pkg/validation"
)

// Request 是推荐请求：用户已选中的电影、演员、导演。
//
//	{"allMetadata": [{"uri": "http://www.wikidata.org/entity/Q25188", "type": "movie"}]}
type Request struct {
	AllMetadata []core.SeedInput `json:"allMetadata" validate:"required,min=1,dive"`
}

// Item 是最终结果中的一部电影。
type Item struct {
	Title           string                 `json:"title"`
	IMDbID          string                 `json:"imdbId"`
	MovieURI        string                 `json:"movie_uri"`
	Points          float64                `json:"points"`
	PointBreakdown  *core.Breakdown        `json:"point_breakdown"`
	SharedResult    []*core.Evidence       `json:"shared_result"`
	PublicationDate string                 `json:"publicationDate"`
	Metadata        *core.MovieMetadata    `json:"metadata"`
	Labels          map[string]utils.Label `json:"labels,omitempty"`
}

// Response 是一次推荐的结果，Items 按 Points 降序。
type Response struct {
	RequestID string
	Items     []Item
}

// Service 执行推荐请求。Pipeline 在进程启动时构建，之后只读，可被并发请求共享。
type Service struct {
	Pipeline     *pipeline.Pipeline
	EntityPrefix string

	// Labels 为 true 时在结果中输出 Item 标签（recall_relation、rank_points 等）
	Labels bool
}

func NewService(p *pipeline.Pipeline, entityPrefix string) *Service {
	return &Service{Pipeline: p, EntityPrefix: entityPrefix}
}

// Recommend 校验请求、构建种子集合并运行 Pipeline。
// 只有请求本身不合法时返回 INVALID_INPUT；关系查询与元数据失败均在链路内部吸收。
func (s *Service) Recommend(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, core.InvalidInput("recommend: request body is required")
	}
	if err := validation.Struct(core.ModuleRecommend, req); err != nil {
		return nil, err
	}
	seeds, err := core.NewSeedSet(req.AllMetadata, s.EntityPrefix)
	if err != nil {
		return nil, err
	}

	requestID := logging.RequestIDFrom(ctx)
	if requestID == "" {
		requestID = logging.NewRequestID()
		ctx = logging.WithRequest(ctx, requestID)
	}
	log := logging.Ctx(ctx)
	rctx := core.NewRecommendContext(requestID, seeds)

	start := time.Now()
	items, err := s.Pipeline.Run(ctx, rctx, nil)
	if err != nil {
		if core.GetDomainError(err) != nil {
			return nil, fmt.Errorf("recommend: %w", err)
		}
		return nil, core.WrapDomainError(core.ModuleRecommend, core.ErrorCodeInternalError, "recommend: pipeline", err)
	}
	metrics.RecommendResults.Observe(float64(len(items)))

	log.Info().
		Int("seed_movies", len(seeds.Movies)).
		Int("wished_actors", len(seeds.Actors)).
		Int("wished_directors", len(seeds.Directors)).
		Int("results", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("recommend done")

	return &Response{RequestID: requestID, Items: s.toItems(items)}, nil
}

func (s *Service) toItems(items []*core.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		bd := it.Breakdown
		if bd == nil {
			bd = core.NewBreakdown()
		}
		evidence := it.Evidence
		if evidence == nil {
			evidence = []*core.Evidence{}
		}
		item := Item{
			Title:           it.Title,
			IMDbID:          it.IMDbID,
			MovieURI:        it.ID,
			Points:          it.Score,
			PointBreakdown:  bd,
			SharedResult:    evidence,
			PublicationDate: it.PublicationDate,
			Metadata:        it.Metadata,
		}
		if s.Labels {
			item.Labels = it.Labels
		}
		out = append(out, item)
	}
	return out
}
