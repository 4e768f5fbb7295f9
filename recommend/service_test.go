package recommend

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/config"
	_ "github.com/rushteam/movierec/config/builders"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/graph"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
)

const wd = core.DefaultEntityPrefix

type ratings map[string]float64

func (r ratings) Name() string { return "stub" }

func (r ratings) BatchGetMovies(_ context.Context, keys []core.MovieKey) (map[string]*core.MovieMetadata, error) {
	out := make(map[string]*core.MovieMetadata, len(keys))
	for _, k := range keys {
		md := &core.MovieMetadata{URI: k.URI, IMDbID: k.IMDbID, MediaType: "movie"}
		if v, ok := r[k.URI]; ok {
			md.TMDBRating = v
		}
		out[k.URI] = md
	}
	return out, nil
}

func (r ratings) BatchGetPeople(_ context.Context, uris []string) (map[string]*core.PersonMetadata, error) {
	out := make(map[string]*core.PersonMetadata, len(uris))
	for _, u := range uris {
		out[u] = &core.PersonMetadata{URI: u, Popularity: 50}
	}
	return out, nil
}

// 种子：电影 M1（2010）+ 指定演员 A1；C1（2012）与 M1 同为 Drama，且由 A1 主演。
func exampleGraph() *graph.MemoryGraph {
	g := graph.NewMemoryGraph()
	g.Add("shared_genre", "targetMovie", core.Binding{"otherMovie": wd + "C1", "entity": wd + "G1", "entityName": "Drama", "targetMovie": wd + "M1"}).
		Add("wished_actor", "entity", core.Binding{"movie": wd + "C1", "entity": wd + "A1", "entityName": "Actor One"}).
		Add("wished_actor", "entity", core.Binding{"movie": wd + "M1", "entity": wd + "A1", "entityName": "Actor One"}).
		Add("movie_data", "movie", core.Binding{"movie": wd + "M1", "title": "Seed", "publicationDate": "2010-07-16T00:00:00Z", "imdbId": "tt0000001"}).
		Add("movie_data", "movie", core.Binding{"movie": wd + "C1", "title": "Candidate", "publicationDate": "2012-03-01T00:00:00Z", "imdbId": "tt0000002"})
	return g
}

func newTestService(t *testing.T, md core.MetadataService) *Service {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = config.DefaultPipeline()
	p, err := cfg.BuildPipeline(config.Factory(&config.Deps{
		Graph:        exampleGraph(),
		Metadata:     md,
		EntityPrefix: wd,
	}))
	require.NoError(t, err)
	return NewService(p, wd)
}

func TestRecommend_EndToEnd(t *testing.T) {
	svc := newTestService(t, ratings{wd + "C1": 7.0, wd + "M1": 3.5})

	ctx := logging.WithRequest(context.Background(), "req-42")
	resp, err := svc.Recommend(ctx, &Request{AllMetadata: []core.SeedInput{
		{URI: wd + "M1", Type: core.EntityMovie},
		{URI: "A1", Type: core.EntityActor},
	}})
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.RequestID)
	require.Len(t, resp.Items, 2)

	// C1：genres 5×1×1 + wishedActor 30×1×1 + 年代 (20-2×2) = 51，评分 7.0 乘数 1
	c1 := resp.Items[0]
	assert.Equal(t, wd+"C1", c1.MovieURI)
	assert.Equal(t, "Candidate", c1.Title)
	assert.Equal(t, "tt0000002", c1.IMDbID)
	assert.Equal(t, "2012-03-01", c1.PublicationDate)
	assert.InDelta(t, 51.0, c1.Points, 1e-9)

	bd := c1.PointBreakdown
	require.Len(t, bd.Categories[core.CategoryGenres], 1)
	assert.Equal(t, 5.0, bd.Categories[core.CategoryGenres][0].PointsAwarded)
	assert.Equal(t, []string{wd + "M1"}, bd.Categories[core.CategoryGenres][0].SharedMovies)
	require.Len(t, bd.Categories[core.CategoryWishedActor], 1)
	assert.Equal(t, 30.0, bd.Categories[core.CategoryWishedActor][0].PointsAwarded)
	assert.Equal(t, []string{wd + "C1"}, bd.Categories[core.CategoryWishedActor][0].SharedMovies)
	assert.Equal(t, 16.0, bd.Proximity.PointsAwarded)
	assert.InDelta(t, 51.0, bd.Total(), 1e-9)
	assert.True(t, bd.Rating.Applied)
	assert.InDelta(t, 1.0, bd.Rating.Multiplier, 1e-9)
	require.Len(t, c1.SharedResult, 2)
	require.NotNil(t, c1.Metadata)

	// 种子 M1 经指定演员路径也成为候选：30 + 20 = 50，评分 3.5 惩罚为 ×0.35
	m1 := resp.Items[1]
	assert.Equal(t, wd+"M1", m1.MovieURI)
	assert.InDelta(t, 17.5, m1.Points, 1e-9)
	assert.InDelta(t, 50.0, m1.PointBreakdown.Rating.OriginalPoints, 1e-9)
}

func TestRecommend_JSONShape(t *testing.T) {
	svc := newTestService(t, ratings{})
	resp, err := svc.Recommend(context.Background(), &Request{AllMetadata: []core.SeedInput{
		{URI: "M1", Type: core.EntityMovie},
	}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RequestID)
	require.Len(t, resp.Items, 1)

	data, err := json.Marshal(resp.Items)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"title", "imdbId", "movie_uri", "points", "point_breakdown", "shared_result", "publicationDate", "metadata"} {
		assert.Contains(t, decoded[0], key)
	}
	bd := decoded[0]["point_breakdown"].(map[string]any)
	assert.Contains(t, bd, "proximity_bonus")
	adj := bd["imdb_adjustment"].(map[string]any)
	assert.Equal(t, false, adj["applied"])
	assert.NotContains(t, decoded[0], "labels")
}

func TestRecommend_InvalidInput(t *testing.T) {
	svc := newTestService(t, ratings{})
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "nil request", req: nil},
		{name: "no seeds", req: &Request{}},
		{name: "unknown type", req: &Request{AllMetadata: []core.SeedInput{{URI: "Q1", Type: "studio"}}}},
		{name: "missing uri", req: &Request{AllMetadata: []core.SeedInput{{Type: core.EntityMovie}}}},
		{name: "blank uri", req: &Request{AllMetadata: []core.SeedInput{{URI: "  ", Type: core.EntityMovie}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Recommend(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err))
		})
	}
}

func TestRecommend_RelationFailureIsAbsorbed(t *testing.T) {
	g := exampleGraph()
	g.Errs["shared_genre"] = assert.AnError
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = config.DefaultPipeline()
	p, err := cfg.BuildPipeline(config.Factory(&config.Deps{Graph: g, Metadata: ratings{}}))
	require.NoError(t, err)

	resp, err := NewService(p, wd).Recommend(context.Background(), &Request{AllMetadata: []core.SeedInput{
		{URI: "M1", Type: core.EntityMovie},
		{URI: "A1", Type: core.EntityActor},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	// 没有 genres 证据：C1 = 30 + 16
	assert.InDelta(t, 46.0, resp.Items[1].Points, 1e-9)
}
