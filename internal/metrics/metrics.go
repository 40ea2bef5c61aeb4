// Package metrics exposes Prometheus instrumentation for MarketPulse
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	upstreamRequests    *prometheus.CounterVec
	upstreamDuration    *prometheus.HistogramVec
	cacheLookups        *prometheus.CounterVec
	dataServed          *prometheus.CounterVec
	cacheSwept          prometheus.Counter
}

// New creates the metrics on a private registry, so tests can build as many as they need.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_upstream_requests_total",
				Help: "Upstream quote API calls by function and outcome",
			},
			[]string{"function", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_upstream_request_duration_seconds",
				Help:    "Upstream quote API latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"function"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_cache_lookups_total",
				Help: "Freshness cache lookups by data kind and result",
			},
			[]string{"kind", "result"},
		),
		dataServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_data_served_total",
				Help: "Market data responses by data kind and the source that produced them",
			},
			[]string{"kind", "source"},
		),
		cacheSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketpulse_cache_swept_total",
				Help: "Stale cache entries removed by the sweeper",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.cacheLookups,
		m.dataServed,
		m.cacheSwept,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the Prometheus exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTP records a completed HTTP request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records an upstream API call. outcome is "ok" or an error category.
func (m *Metrics) ObserveUpstream(function, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(function, outcome).Inc()
	m.upstreamDuration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss
func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// Served records which source in the fallback chain produced a response
func (m *Metrics) Served(kind, source string) {
	if m == nil {
		return
	}
	m.dataServed.WithLabelValues(kind, source).Inc()
}

// Swept records entries removed by the cache sweeper
func (m *Metrics) Swept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cacheSwept.Add(float64(n))
}
