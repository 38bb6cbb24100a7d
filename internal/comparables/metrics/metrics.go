package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the comparables engine.
type Metrics struct {
	// Comparables returned per request by kind
	ResultCount *prometheus.HistogramVec

	// Additive sources that degraded, by source and category
	Degradations *prometheus.CounterVec

	// Full FindComparables latency
	FindLatency prometheus.Histogram
}

// New creates a new Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		ResultCount: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxappeal_comparables_results",
			Help:    "Number of comparables returned per request",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		}, []string{"kind"}),

		Degradations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_comparables_degradations_total",
			Help: "Additive source failures absorbed by the engine",
		}, []string{"source", "category"}),

		FindLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxappeal_comparables_find_duration_seconds",
			Help:    "Duration of comparable discovery including enrichment",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveResults records the size of one result set.
func (m *Metrics) ObserveResults(kind string, n int) {
	if m != nil {
		m.ResultCount.WithLabelValues(kind).Observe(float64(n))
	}
}

// IncrementDegradation records an absorbed additive failure.
func (m *Metrics) IncrementDegradation(source, category string) {
	if m != nil {
		m.Degradations.WithLabelValues(source, category).Inc()
	}
}

// ObserveFindLatency records total discovery time.
func (m *Metrics) ObserveFindLatency(d time.Duration) {
	if m != nil {
		m.FindLatency.Observe(d.Seconds())
	}
}
