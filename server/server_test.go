package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/recommend"
)

// fixedRecall 忽略种子，返回固定候选。
type fixedRecall struct{ ids []string }

func (n fixedRecall) Name() string        { return "recall.fixed" }
func (n fixedRecall) Kind() pipeline.Kind { return pipeline.KindRecall }
func (n fixedRecall) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(n.ids))
	for i, id := range n.ids {
		it := core.NewItem(id)
		it.Title = "Movie " + id
		it.Score = float64(len(n.ids) - i)
		out = append(out, it)
	}
	return out, nil
}

type failing struct{ err error }

func (n failing) Name() string        { return "rank.failing" }
func (n failing) Kind() pipeline.Kind { return pipeline.KindRank }
func (n failing) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	return nil, n.err
}

func newTestServer(t *testing.T, cfg config.ServerConfig, nodes ...pipeline.Node) *httptest.Server {
	svc := recommend.NewService(&pipeline.Pipeline{Nodes: nodes}, core.DefaultEntityPrefix)
	ts := httptest.NewServer(New(cfg, svc).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string, header map[string]string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRecommendHandler(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{}, fixedRecall{ids: []string{"m1", "m2"}})

	resp := post(t, ts.URL+"/recommend", `{"allMetadata":[{"uri":"Q1","type":"movie"}]}`, map[string]string{headerRequestID: "req-7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "req-7", resp.Header.Get(headerRequestID))

	var items []recommend.Item
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	assert.Equal(t, "m1", items[0].MovieURI)
	assert.Equal(t, "Movie m1", items[0].Title)
	assert.Equal(t, 2.0, items[0].Points)
}

func TestRecommendHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []pipeline.Node
		body   string
		status int
	}{
		{name: "malformed json", body: `{"allMetadata":`, status: http.StatusBadRequest},
		{name: "no seeds", body: `{"allMetadata":[]}`, status: http.StatusBadRequest},
		{name: "missing field", body: `{}`, status: http.StatusBadRequest},
		{name: "bad type", body: `{"allMetadata":[{"uri":"Q1","type":"studio"}]}`, status: http.StatusBadRequest},
		{
			name:   "pipeline failure",
			nodes:  []pipeline.Node{failing{err: assert.AnError}},
			body:   `{"allMetadata":[{"uri":"Q1","type":"movie"}]}`,
			status: http.StatusInternalServerError,
		},
		{
			name:   "unavailable",
			nodes:  []pipeline.Node{failing{err: core.NewDomainError(core.ModuleGraph, core.ErrorCodeUnavailable, "graph down")}},
			body:   `{"allMetadata":[{"uri":"Q1","type":"movie"}]}`,
			status: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, config.ServerConfig{}, tt.nodes...)
			resp := post(t, ts.URL+"/recommend", tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, resp.Header.Get(headerRequestID))
		})
	}
}

func TestRecommendHandler_RateLimit(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{RateLimit: 1}, fixedRecall{})
	body := `{"allMetadata":[{"uri":"Q1","type":"movie"}]}`

	assert.Equal(t, http.StatusOK, post(t, ts.URL+"/recommend", body, nil).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, post(t, ts.URL+"/recommend", body, nil).StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 先发一次请求，确保 API 指标已有样本
	post(t, ts.URL+"/recommend", `{}`, nil)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "movierec_api_requests_total")
}
