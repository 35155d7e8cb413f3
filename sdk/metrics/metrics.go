// Package metrics exposes the service's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcomes recorded by stores.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeInvalid  = "invalid"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Options is the exportable metrics configuration.
type Options struct {
	Enabled   bool   `yaml:"enabled" env:"METRICS_ENABLED" default:"true"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" default:"userdir"`
	Path      string `yaml:"path" env:"METRICS_PATH" default:"/metrics"`
}

// Collector owns a private registry and the service's metric vectors. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpErrors   prometheus.Counter
	httpDuration *prometheus.HistogramVec
	httpPanics   prometheus.Counter
	dbQueries    *prometheus.CounterVec
	dbDuration   *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewCollector registers all metrics on a fresh registry together with the
// Go runtime and process collectors.
func NewCollector(cfg Options) *Collector {
	ns := cfg.Namespace
	if ns == "" {
		ns = "userdir"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method and status code.",
		}, []string{"method", "status"}),
		httpErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_errors_total",
			Help:      "HTTP requests that ended in an error response.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		httpPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_panics_total",
			Help:      "Handler panics recovered.",
		}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "db_queries_total",
			Help:      "Store statements, by operation and outcome.",
		}, []string{"op", "outcome"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "db_query_duration_seconds",
			Help:      "Store statement latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups, by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpErrors,
		c.httpDuration,
		c.httpPanics,
		c.dbQueries,
		c.dbDuration,
		c.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// RecordRequest counts a finished HTTP request.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
	if status >= http.StatusBadRequest {
		c.httpErrors.Inc()
	}
}

// RecordPanic counts a recovered handler panic.
func (c *Collector) RecordPanic() {
	if c == nil {
		return
	}
	c.httpPanics.Inc()
}

// RecordQuery counts a finished store statement.
func (c *Collector) RecordQuery(op, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.dbQueries.WithLabelValues(op, outcome).Inc()
	c.dbDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache lookup.
func (c *Collector) RecordCacheLookup(result string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}
