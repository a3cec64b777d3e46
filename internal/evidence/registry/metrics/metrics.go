package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry resolution.
type Metrics struct {
	// Resolutions by the source that answered: "local", "live", "none"
	Resolutions *prometheus.CounterVec

	// Live registry round-trip latency, cache excluded
	LiveLatency prometheus.Histogram

	// Live lookup cache results: "hit", "miss", "error"
	CacheResults *prometheus.CounterVec
}

// New creates registry metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_registry_resolutions_total",
			Help: "Registry resolutions by answering source",
		}, []string{"source"}),

		LiveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_registry_live_lookup_duration_seconds",
			Help:    "Duration of live registry lookups",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		CacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_registry_cache_results_total",
			Help: "Live lookup cache results",
		}, []string{"result"}),
	}
}

// IncrementResolution records which source answered a lookup.
func (m *Metrics) IncrementResolution(source string) {
	if m != nil {
		m.Resolutions.WithLabelValues(source).Inc()
	}
}

// ObserveLiveLatency records the duration of a live registry call.
func (m *Metrics) ObserveLiveLatency(d time.Duration) {
	if m != nil {
		m.LiveLatency.Observe(d.Seconds())
	}
}

// IncrementCacheResult records a cache hit, miss or error.
func (m *Metrics) IncrementCacheResult(result string) {
	if m != nil {
		m.CacheResults.WithLabelValues(result).Inc()
	}
}
