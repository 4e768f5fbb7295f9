package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/graph"
	"github.com/rushteam/movierec/pkg/logging"
)

// SharedRelation 是跨电影的关系推断源：
// 找出与任一种子电影经同一实体（演员/导演/类型）相连的其他电影。
//
// 种子按 BatchSize 分批查询，结果逐行回收后在客户端汇总为每个候选一条记录，
// 因此分组结果与分批方式无关。
type SharedRelation struct {
	Graph core.GraphService

	// Relation 查询名（如 "shared_cast"），用于日志与 MemoryGraph 匹配
	Relation string
	Property string
	Cat      core.Category

	BatchSize      int
	PropertyPrefix string
}

// NewSharedCast 共享演员（P161）。
func NewSharedCast(g core.GraphService, batchSize int) *SharedRelation {
	return &SharedRelation{Graph: g, Relation: "shared_cast", Property: PropertyCastMember, Cat: core.CategoryActors, BatchSize: batchSize}
}

// NewSharedDirector 共享导演（P57）。
func NewSharedDirector(g core.GraphService, batchSize int) *SharedRelation {
	return &SharedRelation{Graph: g, Relation: "shared_director", Property: PropertyDirector, Cat: core.CategoryDirectors, BatchSize: batchSize}
}

// NewSharedGenre 共享类型（P136）。
func NewSharedGenre(g core.GraphService, batchSize int) *SharedRelation {
	return &SharedRelation{Graph: g, Relation: "shared_genre", Property: PropertyGenre, Cat: core.CategoryGenres, BatchSize: batchSize}
}

func (s *SharedRelation) Name() string            { return s.Relation }
func (s *SharedRelation) Category() core.Category { return s.Cat }

func (s *SharedRelation) Infer(ctx context.Context, rctx *core.RecommendContext) (*Result, error) {
	if s.Graph == nil {
		return nil, core.NewDomainError(core.ModuleGraph, core.ErrorCodeInvalidInput, "recall: graph service is required")
	}
	seeds := graph.FilterValid(rctx.Seeds.Movies)
	if len(seeds) == 0 {
		return NewResult(s.Name(), s.Cat), nil
	}

	grp := newGrouper()
	for _, batch := range graph.Chunk(seeds, s.BatchSize) {
		rows, err := s.Graph.Select(ctx, core.GraphQuery{
			Name: s.Relation,
			IDs:  batch,
			Text: sharedQuery(s.PropertyPrefix, s.Property, batch),
		})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			grp.add(row[varCandidate], row[varEntity], row[varEntityName], row[varSeed])
		}
	}

	res := grp.result(s.Name(), s.Cat)
	logging.Ctx(ctx).Debug().
		Str("relation", s.Relation).
		Int("seeds", len(seeds)).
		Int("candidates", res.Len()).
		Msg("shared relation inferred")
	return res, nil
}

var _ Source = (*SharedRelation)(nil)
