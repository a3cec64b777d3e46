package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for verdicts.
type Metrics struct {
	// Verdicts by status and whether an override forced them
	Outcomes *prometheus.CounterVec

	// Distribution of final confidence scores
	Confidence prometheus.Histogram
}

// New creates verdict metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_decision_outcomes_total",
			Help: "Total verdicts by status",
		}, []string{"status", "forced"}), // status: "Verified", "Flagged", "Unknown"

		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_decision_confidence",
			Help:    "Final confidence score of each verdict",
			Buckets: []float64{0, 10, 25, 50, 68, 80, 90, 98, 100},
		}),
	}
}

// ObserveVerdict records one verdict.
func (m *Metrics) ObserveVerdict(status string, confidence int, forced bool) {
	if m == nil {
		return
	}
	f := "false"
	if forced {
		f = "true"
	}
	m.Outcomes.WithLabelValues(status, f).Inc()
	m.Confidence.Observe(float64(confidence))
}
