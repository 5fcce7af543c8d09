package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the per-server Prometheus instruments. Each server carries
// its own registry so tests can spin up servers without collector collisions.
type metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	cacheHits   prometheus.Counter
	duration    prometheus.Histogram
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,
		conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crossflow_conversions_total",
			Help: "Conversion requests by outcome.",
		}, []string{"status"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "crossflow_cache_hits_total",
			Help: "Conversions served from the artifact cache.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crossflow_conversion_duration_seconds",
			Help:    "Wall time of full conversions (cache misses only).",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
