package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

// SPARQLClient 通过 SPARQL 1.1 Protocol（HTTP POST，application/x-www-form-urlencoded）
// 查询图谱端点，结果格式为 application/sparql-results+json。
//
// 兼容 Apache Jena Fuseki（http://localhost:3030/dataset/sparql）与 Wikidata Query Service。
type SPARQLClient struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client

	// UserAgent Wikidata 等公共端点要求提供
	UserAgent string
}

// SPARQLOption 客户端配置选项
type SPARQLOption func(*SPARQLClient)

// WithSPARQLTimeout 设置单次查询超时
func WithSPARQLTimeout(timeout time.Duration) SPARQLOption {
	return func(c *SPARQLClient) {
		c.Timeout = timeout
	}
}

// WithSPARQLHTTPClient 使用自定义 http.Client
func WithSPARQLHTTPClient(client *http.Client) SPARQLOption {
	return func(c *SPARQLClient) {
		c.Client = client
	}
}

// WithSPARQLUserAgent 设置 User-Agent
func WithSPARQLUserAgent(ua string) SPARQLOption {
	return func(c *SPARQLClient) {
		c.UserAgent = ua
	}
}

// NewSPARQLClient 创建 SPARQL 客户端。
func NewSPARQLClient(endpoint string, opts ...SPARQLOption) *SPARQLClient {
	c := &SPARQLClient{
		Endpoint:  endpoint,
		Timeout:   30 * time.Second,
		UserAgent: "movierec/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	return c
}

func (c *SPARQLClient) Name() string { return "sparql" }

type sparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]sparqlTerm `json:"bindings"`
	} `json:"results"`
}

type sparqlTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Select 实现 core.GraphService。
func (c *SPARQLClient) Select(ctx context.Context, q core.GraphQuery) (rows []core.Binding, err error) {
	if c.Endpoint == "" {
		return nil, core.NewDomainError(core.ModuleGraph, core.ErrorCodeInvalidInput, "graph: sparql endpoint is required")
	}
	start := time.Now()
	defer func() { metrics.RecordGraphQuery(q.Name, time.Since(start), err) }()

	form := url.Values{}
	form.Set("query", q.Text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("graph: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleGraph, core.ErrorCodeUnavailable, "graph: query "+q.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.NewDomainError(core.ModuleGraph, core.ErrorCodeUnavailable,
			fmt.Sprintf("graph: query %s status=%d body=%s", q.Name, resp.StatusCode, string(b)))
	}

	var res sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, core.WrapDomainError(core.ModuleGraph, core.ErrorCodeInternalError, "graph: decode "+q.Name, err)
	}

	rows = make([]core.Binding, 0, len(res.Results.Bindings))
	for _, b := range res.Results.Bindings {
		row := make(core.Binding, len(b))
		for name, term := range b {
			row[name] = term.Value
		}
		rows = append(rows, row)
	}

	logging.Ctx(ctx).Debug().
		Str("query", q.Name).
		Int("ids", len(q.IDs)).
		Int("rows", len(rows)).
		Dur("latency", time.Since(start)).
		Msg("sparql select")
	return rows, nil
}

var _ core.GraphService = (*SPARQLClient)(nil)
