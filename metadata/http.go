package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

// maxBodyBytes 限制外部响应体大小
const maxBodyBytes = 1 << 20

// httpSource 是外部元数据 HTTP 接口的公共部分：限流 + 熔断 + 错误分类。
//
//   - 404 / 业务上的「查无结果」返回 NOT_FOUND，不计入熔断失败
//   - 其余非 200、网络错误返回 UNAVAILABLE
//   - 熔断打开时直接返回 UNAVAILABLE，不发请求
type httpSource struct {
	name    string
	baseURL string
	client  *http.Client
	header  http.Header
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// Option 配置外部元数据客户端。
type Option func(*httpSource)

// WithBaseURL 覆盖接口地址（测试中指向 httptest.Server）。
func WithBaseURL(u string) Option {
	return func(s *httpSource) { s.baseURL = u }
}

// WithHTTPClient 使用自定义 http.Client。
func WithHTTPClient(c *http.Client) Option {
	return func(s *httpSource) { s.client = c }
}

// WithRateLimit 设置每秒请求数与突发量，rps <= 0 表示不限流。
func WithRateLimit(rps float64, burst int) Option {
	return func(s *httpSource) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func newHTTPSource(name, baseURL string, opts ...Option) *httpSource {
	s := &httpSource{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.breaker = newBreaker(name)
	return s
}

// newBreaker 连续 5 次失败打开，30 秒后半开。
func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsNotFound(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger := logging.Logger()
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

// get 发起 GET 请求并返回响应体。
func (s *httpSource) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable, s.name+": rate limit wait", err)
		}
	}

	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.do(ctx, path, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRejected.WithLabelValues(s.name).Inc()
		return nil, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable, s.name+": circuit open", err)
	}
	return body, err
}

func (s *httpSource) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", s.name, err)
	}
	for k, vs := range s.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable, s.name+": request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable, s.name+": read body", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound, s.name+": not found")
	default:
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeUnavailable,
			fmt.Sprintf("%s: status=%d body=%.200s", s.name, resp.StatusCode, body))
	}
}

// outcome 把错误归类为指标标签。
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case core.IsNotFound(err):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
