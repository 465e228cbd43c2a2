package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for upload processing.
type Metrics struct {
	Uploads            *prometheus.CounterVec   // labels: tool={uv,wind}, outcome={ok,error}
	RowsDropped        *prometheus.CounterVec   // labels: reason={timestamp,measurement,range}
	ProcessingDuration *prometheus.HistogramVec // labels: tool

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry so servers and
// tests can each own one.
func NewMetrics() *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uvmed",
			Name:      "uploads_total",
			Help:      "Uploads processed, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uvmed",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded while normalizing uploads, by reason.",
		}, []string{"reason"}),
		ProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uvmed",
			Name:      "processing_duration_seconds",
			Help:      "Time from upload received to response written.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"tool"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Uploads, m.RowsDropped, m.ProcessingDuration)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpload records one processed upload.
func (m *Metrics) ObserveUpload(tool string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Uploads.WithLabelValues(tool, outcome).Inc()
	m.ProcessingDuration.WithLabelValues(tool).Observe(seconds)
}

// ObserveDrops records discarded rows by reason.
func (m *Metrics) ObserveDrops(timestamp, measurement, outOfRange int) {
	if timestamp > 0 {
		m.RowsDropped.WithLabelValues("timestamp").Add(float64(timestamp))
	}
	if measurement > 0 {
		m.RowsDropped.WithLabelValues("measurement").Add(float64(measurement))
	}
	if outOfRange > 0 {
		m.RowsDropped.WithLabelValues("range").Add(float64(outOfRange))
	}
}
