package builders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/graph"
	"github.com/rushteam/movierec/metadata"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/rank"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
	"github.com/rushteam/movierec/store"
)

func testDeps(t *testing.T) *config.Deps {
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return &config.Deps{
		Graph:        graph.NewMemoryGraph(),
		Metadata:     metadata.NewService(nil),
		Store:        s,
		EntityPrefix: core.DefaultEntityPrefix,
	}
}

func TestDefaultPipeline(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = config.DefaultPipeline()
	p, err := cfg.BuildPipeline(config.Factory(testDeps(t)))
	require.NoError(t, err)

	names := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{
		"recall.graph",
		"rank.points",
		"rerank.topn.pool",
		"postprocess.metadata",
		"rank.rating",
		"rerank.topn.result",
	}, names)

	assert.Equal(t, 200, p.Nodes[2].(*rerank.TopNNode).N)
	assert.Equal(t, 100, p.Nodes[5].(*rerank.TopNNode).N)
}

func TestBuildGraphRecallNode(t *testing.T) {
	deps := testDeps(t)
	node, err := BuildGraphRecallNode(map[string]any{
		"relations":            []any{"shared_cast", "shared_director", "shared_genre"},
		"batch_size":           10,
		"popularity_threshold": 12.5,
		"max_concurrent":       2,
	}, deps)
	require.NoError(t, err)

	gr := node.(*recall.GraphRecall)
	require.Len(t, gr.Fanout.Sources, 3)
	assert.Equal(t, 2, gr.Fanout.MaxConcurrent)
	assert.Equal(t, 10, gr.Resolver.BatchSize)

	cast, ok := gr.Fanout.Sources[0].(*recall.PopularityFilter)
	require.True(t, ok)
	assert.Equal(t, 12.5, cast.Threshold)
	director, ok := gr.Fanout.Sources[1].(*recall.PopularityFilter)
	require.True(t, ok)
	assert.Zero(t, director.Threshold)
	_, ok = gr.Fanout.Sources[2].(*recall.SharedRelation)
	assert.True(t, ok)

	_, err = BuildGraphRecallNode(map[string]any{"relations": []any{"sequels"}}, deps)
	assert.Error(t, err)
	_, err = BuildGraphRecallNode(nil, &config.Deps{})
	assert.Error(t, err)
}

func TestBuildPointsNode(t *testing.T) {
	node, err := BuildPointsNode(map[string]any{
		"weights":     map[string]any{"genres": 7, "actors": 12.5},
		"combo_bonus": 80,
	}, nil)
	require.NoError(t, err)
	pn := node.(*rank.PointsNode)
	assert.Equal(t, 7.0, pn.Weights[core.CategoryGenres])
	assert.Equal(t, 12.5, pn.Weights[core.CategoryActors])
	assert.Equal(t, 15.0, pn.Weights[core.CategoryDirectors])
	assert.Equal(t, 80.0, pn.ComboBonus)

	_, err = BuildPointsNode(map[string]any{"weights": map[string]any{"writers": 3}}, nil)
	assert.Error(t, err)
}

func TestBuildRatingNode(t *testing.T) {
	node, err := BuildRatingNode(map[string]any{"penalty_below": 6}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, node.(*rank.RatingNode).PenaltyBelow)
	assert.False(t, node.(*rank.RatingNode).PreferIMDb)

	node, err = BuildRatingNode(map[string]any{"prefer_imdb": true}, nil)
	require.NoError(t, err)
	assert.True(t, node.(*rank.RatingNode).PreferIMDb)

	_, err = BuildRatingNode(map[string]any{"baseline_divisor": 0}, nil)
	assert.Error(t, err)
}

func TestBuildFilterNode(t *testing.T) {
	deps := testDeps(t)
	node, err := BuildFilterNode(map[string]any{
		"filters": []any{
			map[string]any{"type": "blacklist", "item_ids": []any{"Q1"}, "key": "movierec:blacklist"},
			map[string]any{"type": "expr", "expr": "item.year >= 1990"},
		},
	}, deps)
	require.NoError(t, err)

	fn := node.(*filter.FilterNode)
	require.Len(t, fn.Filters, 2)
	assert.Equal(t, "filter.blacklist", fn.Filters[0].Name())
	assert.Equal(t, "item.year >= 1990", fn.Filters[1].(*filter.ExprFilter).Expr())

	it := core.NewItem(core.DefaultEntityPrefix + "Q1")
	drop, err := fn.Filters[0].ShouldFilter(context.Background(), nil, it)
	require.NoError(t, err)
	assert.True(t, drop)

	tests := []map[string]any{
		{},
		{"filters": []any{map[string]any{"type": "exposed"}}},
		{"filters": []any{map[string]any{"type": "expr", "expr": "item.year >="}}},
	}
	for _, cfg := range tests {
		_, err := BuildFilterNode(cfg, deps)
		assert.Error(t, err)
	}
}

func TestBuildMetadataNode_RequiresService(t *testing.T) {
	_, err := BuildMetadataNode(nil, &config.Deps{})
	assert.Error(t, err)
}
