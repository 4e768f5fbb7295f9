package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/graph"
	"github.com/rushteam/movierec/pkg/logging"
)

// WishedRelation 找出与用户指定的演员/导演相连的全部电影。
//
// 这类证据只说明候选电影本身，sharedMovies 固定为 [候选]，
// 与跨电影证据的合并 key 天然不同。
type WishedRelation struct {
	Graph core.GraphService

	Relation string
	Property string
	Cat      core.Category

	// Entities 从请求种子中取出本源关注的实体
	Entities func(core.SeedSet) []string

	BatchSize      int
	PropertyPrefix string
}

// NewWishedActor 指定演员出演的电影（P161）。
func NewWishedActor(g core.GraphService, batchSize int) *WishedRelation {
	return &WishedRelation{
		Graph:     g,
		Relation:  "wished_actor",
		Property:  PropertyCastMember,
		Cat:       core.CategoryWishedActor,
		Entities:  func(s core.SeedSet) []string { return s.Actors },
		BatchSize: batchSize,
	}
}

// NewWishedDirector 指定导演执导的电影（P57）。
func NewWishedDirector(g core.GraphService, batchSize int) *WishedRelation {
	return &WishedRelation{
		Graph:     g,
		Relation:  "wished_director",
		Property:  PropertyDirector,
		Cat:       core.CategoryWishedDirector,
		Entities:  func(s core.SeedSet) []string { return s.Directors },
		BatchSize: batchSize,
	}
}

func (s *WishedRelation) Name() string            { return s.Relation }
func (s *WishedRelation) Category() core.Category { return s.Cat }

func (s *WishedRelation) Infer(ctx context.Context, rctx *core.RecommendContext) (*Result, error) {
	if s.Graph == nil {
		return nil, core.NewDomainError(core.ModuleGraph, core.ErrorCodeInvalidInput, "recall: graph service is required")
	}
	if s.Entities == nil {
		return NewResult(s.Name(), s.Cat), nil
	}
	entities := graph.FilterValid(s.Entities(rctx.Seeds))
	if len(entities) == 0 {
		return NewResult(s.Name(), s.Cat), nil
	}

	grp := newGrouper()
	for _, batch := range graph.Chunk(entities, s.BatchSize) {
		rows, err := s.Graph.Select(ctx, core.GraphQuery{
			Name: s.Relation,
			IDs:  batch,
			Text: wishedQuery(s.PropertyPrefix, s.Property, batch),
		})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			movie := row[varMovie]
			// 种子即候选自身
			grp.add(movie, row[varEntity], row[varEntityName], movie)
		}
	}

	res := grp.result(s.Name(), s.Cat)
	logging.Ctx(ctx).Debug().
		Str("relation", s.Relation).
		Int("entities", len(entities)).
		Int("candidates", res.Len()).
		Msg("wished relation inferred")
	return res, nil
}

var _ Source = (*WishedRelation)(nil)
