// Package metrics 定义推荐服务的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_node_duration_seconds",
			Help:    "Duration of pipeline node execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node", "kind"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_node_errors_total",
			Help: "Total number of pipeline node errors",
		},
		[]string{"node", "kind"},
	)

	// 知识图谱
	GraphQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_graph_query_duration_seconds",
			Help:    "Duration of knowledge graph queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"relation"},
	)

	GraphQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_graph_query_errors_total",
			Help: "Total number of knowledge graph query errors",
		},
		[]string{"relation"},
	)

	// 外部元数据
	MetadataLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_metadata_lookups_total",
			Help: "Total number of external metadata lookups by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: ok, not_found, error, timeout
	)

	MetadataLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_metadata_lookup_duration_seconds",
			Help:    "Duration of external metadata lookups in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	MetadataCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_metadata_cache_hits_total",
			Help: "Total number of metadata cache hits",
		},
		[]string{"kind"},
	)

	MetadataCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_metadata_cache_misses_total",
			Help: "Total number of metadata cache misses",
		},
		[]string{"kind"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movierec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_circuit_breaker_rejected_total",
			Help: "Total number of requests rejected by an open circuit breaker",
		},
		[]string{"name"},
	)

	// 推荐请求
	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_recommend_candidates",
			Help:    "Number of candidates produced by graph recall per request",
			Buckets: []float64{0, 10, 50, 100, 200, 500, 1000, 5000},
		},
	)

	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "movierec_recommend_results",
			Help:    "Number of movies returned per request",
			Buckets: []float64{0, 1, 10, 25, 50, 75, 100},
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movierec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movierec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordNode 记录一次节点执行。
func RecordNode(node, kind string, duration time.Duration, err error) {
	NodeDuration.WithLabelValues(node, kind).Observe(duration.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node, kind).Inc()
	}
}

// RecordGraphQuery 记录一次图谱查询。
func RecordGraphQuery(relation string, duration time.Duration, err error) {
	GraphQueryDuration.WithLabelValues(relation).Observe(duration.Seconds())
	if err != nil {
		GraphQueryErrors.WithLabelValues(relation).Inc()
	}
}

// RecordMetadataLookup 记录一次外部元数据查询。
func RecordMetadataLookup(provider, outcome string, duration time.Duration) {
	MetadataLookups.WithLabelValues(provider, outcome).Inc()
	MetadataLookupDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCache 记录元数据缓存命中/未命中。
func RecordCache(kind string, hit bool) {
	if hit {
		MetadataCacheHits.WithLabelValues(kind).Inc()
		return
	}
	MetadataCacheMisses.WithLabelValues(kind).Inc()
}

// RecordAPIRequest 记录一次 API 请求。
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
