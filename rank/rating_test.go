package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/core"
)

func ptr(f float64) *float64 { return &f }

func TestRatingNode_Boundary(t *testing.T) {
	n := NewRatingNode()
	assert.InDelta(t, 5.0/7.0, n.Multiplier(5.0), 1e-12)
	assert.InDelta(t, 0.49, n.Multiplier(4.9), 1e-12)
	assert.InDelta(t, 1.0, n.Multiplier(7.0), 1e-12)
}

func TestRatingNode_Adjust(t *testing.T) {
	n := NewRatingNode()

	// TMDB vote_average 优先
	adj := n.Adjust(100, &core.MovieMetadata{IMDbRating: ptr(8.4), TMDBRating: 6})
	assert.True(t, adj.Applied)
	assert.Equal(t, "tmdb", adj.RatingSource)
	assert.Equal(t, 100.0, adj.OriginalPoints)
	assert.InDelta(t, 600.0/7.0, adj.AdjustedPoints, 1e-9)

	adj = n.Adjust(100, &core.MovieMetadata{TMDBRating: 3.5})
	assert.Equal(t, "tmdb", adj.RatingSource)
	assert.InDelta(t, 35.0, adj.AdjustedPoints, 1e-9)

	// TMDB 缺失时回退 IMDb
	adj = n.Adjust(100, &core.MovieMetadata{IMDbRating: ptr(8.4)})
	assert.Equal(t, "imdb", adj.RatingSource)
	assert.InDelta(t, 120.0, adj.AdjustedPoints, 1e-9)

	adj = n.Adjust(100, &core.MovieMetadata{IMDbRating: ptr(0)})
	assert.False(t, adj.Applied)
	assert.Equal(t, 100.0, adj.AdjustedPoints)
	assert.NotEmpty(t, adj.Reason)

	adj = n.Adjust(42, nil)
	assert.False(t, adj.Applied)
	assert.Equal(t, 42.0, adj.AdjustedPoints)
}

func TestRatingNode_PreferIMDb(t *testing.T) {
	n := NewRatingNode()
	n.PreferIMDb = true

	adj := n.Adjust(100, &core.MovieMetadata{IMDbRating: ptr(8.4), TMDBRating: 6})
	assert.Equal(t, "imdb", adj.RatingSource)
	assert.InDelta(t, 120.0, adj.AdjustedPoints, 1e-9)

	adj = n.Adjust(100, &core.MovieMetadata{TMDBRating: 6})
	assert.Equal(t, "tmdb", adj.RatingSource)
}

func TestRatingNode_ProcessResorts(t *testing.T) {
	a := core.NewItem("a")
	a.Score = 100
	a.Metadata = &core.MovieMetadata{IMDbRating: ptr(4.0)} // 40
	b := core.NewItem("b")
	b.Score = 60
	b.Metadata = &core.MovieMetadata{IMDbRating: ptr(8.4)} // 72
	c := core.NewItem("c")
	c.Score = 50 // 无评分

	out, err := NewRatingNode().Process(context.Background(), nil, []*core.Item{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, 100.0, a.Breakdown.Rating.OriginalPoints)
	assert.InDelta(t, 40.0, a.Score, 1e-9)
	assert.False(t, c.Breakdown.Rating.Applied)
	assert.Equal(t, "imdb", b.Labels["rank_rating"].Value)
}
