package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements EngineHooks, CacheHooks and HTTPHooks by
// recording Prometheus metrics. All collectors are registered on the
// registerer passed to NewPrometheusHooks.
type PrometheusHooks struct {
	buildsTotal    *prometheus.CounterVec
	buildDuration  *prometheus.HistogramVec
	analyzeTotal   *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewPrometheusHooks creates the rulegraph collectors on reg.
// Passing prometheus.DefaultRegisterer exposes them on the default /metrics handler.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		buildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rulegraph_ruleset_builds_total",
			Help: "Ruleset constructions by state count and outcome.",
		}, []string{"states", "outcome"}),
		buildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rulegraph_ruleset_build_duration_seconds",
			Help:    "Time spent building adjacency and transition matrices.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"states"}),
		analyzeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rulegraph_analyses_total",
			Help: "Completed Markov analyses by state count and class.",
		}, []string{"states", "class"}),
		cacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rulegraph_cache_operations_total",
			Help: "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rulegraph_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rulegraph_http_requests_total",
			Help: "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rulegraph_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *PrometheusHooks) OnBuildStart(context.Context, int, int) {}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, _, states int, d time.Duration, err error) {
	s := strconv.Itoa(states)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.buildsTotal.WithLabelValues(s, outcome).Inc()
	h.buildDuration.WithLabelValues(s).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnAnalyzeComplete(_ context.Context, states, class int, _ time.Duration) {
	h.analyzeTotal.WithLabelValues(strconv.Itoa(states), strconv.Itoa(class)).Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheTotal.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ EngineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
