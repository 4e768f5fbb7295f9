package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
)

// PopularityFilter 包装一个 Source：为结果中的实体补充人气与头像，
// 并剔除人气低于 Threshold 的实体；实体被剔空的分组、候选一并移除，
// 分组的种子集合收缩为剩余实体的种子并集。
//
// Threshold <= 0 时只补充信息不过滤（导演使用该模式）。
// 查不到元数据的实体人气按 0 处理。
type PopularityFilter struct {
	Source    Source
	People    core.MetadataService
	Threshold float64
}

func (f *PopularityFilter) Name() string            { return f.Source.Name() }
func (f *PopularityFilter) Category() core.Category { return f.Source.Category() }

func (f *PopularityFilter) Infer(ctx context.Context, rctx *core.RecommendContext) (*Result, error) {
	res, err := f.Source.Infer(ctx, rctx)
	if err != nil || res == nil || f.People == nil {
		return res, err
	}
	uris := res.EntityURIs()
	if len(uris) == 0 {
		return res, nil
	}
	people, err := f.People.BatchGetPeople(ctx, uris)
	if err != nil {
		return nil, err
	}

	before := res.Len()
	FilterByPopularity(res, people, f.Threshold)
	logging.Ctx(ctx).Debug().
		Str("relation", res.Source).
		Int("entities", len(uris)).
		Int("candidates_before", before).
		Int("candidates_after", res.Len()).
		Float64("threshold", f.Threshold).
		Msg("popularity filter applied")
	return res, nil
}

// FilterByPopularity 原地修改 res：补充实体人气/头像，按阈值过滤。
func FilterByPopularity(res *Result, people map[string]*core.PersonMetadata, threshold float64) {
	for candidate, groups := range res.Candidates {
		kept := groups[:0]
		for _, g := range groups {
			ents := g.Entities[:0]
			for _, e := range g.Entities {
				if p, ok := people[e.URI]; ok && p != nil {
					e.Popularity = p.Popularity
					e.Profile = p.Profile
				}
				if threshold > 0 && e.Popularity < threshold {
					continue
				}
				ents = append(ents, e)
			}
			g.Entities = ents
			// 种子集合随实体收缩；实体不带种子信息时保留原值
			if seeds := entitySeeds(ents); len(seeds) > 0 {
				g.SharedMovies = seeds
			}
			if len(g.Entities) > 0 {
				kept = append(kept, g)
			}
		}
		if len(kept) == 0 {
			delete(res.Candidates, candidate)
			continue
		}
		res.Candidates[candidate] = kept
	}
}

var _ Source = (*PopularityFilter)(nil)
