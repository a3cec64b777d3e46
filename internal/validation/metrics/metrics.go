package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for upload validation.
type Metrics struct {
	// Uploads by outcome: "success", "client_error", "server_error"
	Uploads *prometheus.CounterVec

	// Records processed across all successful uploads
	Records prometheus.Counter

	// End-to-end latency of one upload, ingestion included
	UploadDuration prometheus.Histogram
}

// New creates upload metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardian_uploads_total",
			Help: "Total uploads by outcome",
		}, []string{"outcome"}),

		Records: factory.NewCounter(prometheus.CounterOpts{
			Name: "guardian_upload_records_total",
			Help: "Total records validated",
		}),

		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_upload_duration_seconds",
			Help:    "Time taken to validate one upload",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveUpload records one finished upload.
func (m *Metrics) ObserveUpload(outcome string, records int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
	m.Records.Add(float64(records))
	m.UploadDuration.Observe(elapsed.Seconds())
}
