// Package metrics holds the Prometheus instrumentation for the screening
// pipeline. A single Registry is constructed at process start and passed
// into the components that record to it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the screener.
type Registry struct {
	registry *prometheus.Registry

	// Provider call outcomes by provider and result (ok, empty, error)
	ProviderRequests *prometheus.CounterVec

	// Record cache performance
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Screenings by classification
	Screenings *prometheus.CounterVec

	// End-to-end screening latency
	ScreenDuration prometheus.Histogram
}

// NewRegistry creates a metrics registry with all screener metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multibagger_provider_requests_total",
				Help: "Provider fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "multibagger_record_cache_hits_total",
				Help: "Record cache hits",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "multibagger_record_cache_misses_total",
				Help: "Record cache misses, including stale discards",
			},
		),

		Screenings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multibagger_screenings_total",
				Help: "Completed screenings by classification",
			},
			[]string{"classification"},
		),

		ScreenDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "multibagger_screen_duration_seconds",
				Help:    "End-to-end single-ticker screening duration",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}

	r.registry.MustRegister(
		r.ProviderRequests,
		r.CacheHits,
		r.CacheMisses,
		r.Screenings,
		r.ScreenDuration,
	)

	return r
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
