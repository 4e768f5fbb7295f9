package recall

import (
	"context"
	"time"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

// GraphRecall 是基于知识图谱关系推断的召回节点。
//
// 流程：并发执行全部关系源 -> 按 Sources 顺序单线程合并 ->
// 一次性解析候选与种子电影的基础字段（标题、日期、IMDb ID），种子字段写入 rctx.SeedMovies。
// 解析失败只记录日志，候选保留且字段为空。
type GraphRecall struct {
	Fanout   *Fanout
	Resolver *MovieResolver
}

func (n *GraphRecall) Name() string        { return "recall.graph" }
func (n *GraphRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *GraphRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if n.Fanout == nil || rctx == nil {
		return nil, nil
	}
	log := logging.Ctx(ctx)

	start := time.Now()
	results := n.Fanout.Run(ctx, rctx)

	agg := NewAggregator()
	for _, res := range results {
		agg.MergeResult(res)
		log.Debug().
			Str("relation", res.Source).
			Int("candidates", res.Len()).
			Msg("relation merged")
	}

	if n.Resolver != nil {
		ids := append(agg.IDs(), rctx.Seeds.Movies...)
		records, err := n.Resolver.Resolve(ctx, ids)
		if err != nil {
			log.Warn().Err(err).Msg("movie data lookup failed, continuing without titles and dates")
		}
		agg.Apply(records)
		if rctx.SeedMovies == nil {
			rctx.SeedMovies = make(map[string]core.MovieRecord)
		}
		for _, seed := range rctx.Seeds.Movies {
			if rec, ok := records[seed]; ok {
				rctx.SeedMovies[seed] = rec
			}
		}
	}

	metrics.RecommendCandidates.Observe(float64(agg.Len()))
	log.Info().
		Int("sources", len(results)).
		Int("candidates", agg.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("graph recall done")
	return agg.Items(), nil
}

var _ pipeline.Node = (*GraphRecall)(nil)
