package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registry queries.
type Metrics struct {
	// Query latency by dataset and outcome
	QueryLatency *prometheus.HistogramVec

	// Failed queries by dataset and error category
	QueryErrors *prometheus.CounterVec

	// Time spent waiting on the local rate limiter
	ThrottleWait prometheus.Histogram
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		QueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxappeal_registry_query_duration_seconds",
			Help:    "Duration of registry dataset queries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"dataset", "outcome"}), // outcome: "ok", "error"

		QueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_registry_query_errors_total",
			Help: "Total failed registry queries by dataset and category",
		}, []string{"dataset", "category"}),

		ThrottleWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxappeal_registry_throttle_wait_seconds",
			Help:    "Time spent waiting for the registry rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveQuery records the latency of one dataset query.
func (m *Metrics) ObserveQuery(dataset string, ok bool, d time.Duration) {
	if m != nil {
		outcome := "ok"
		if !ok {
			outcome = "error"
		}
		m.QueryLatency.WithLabelValues(dataset, outcome).Observe(d.Seconds())
	}
}

// IncrementError records a failed query.
func (m *Metrics) IncrementError(dataset, category string) {
	if m != nil {
		m.QueryErrors.WithLabelValues(dataset, category).Inc()
	}
}

// ObserveThrottle records limiter wait time.
func (m *Metrics) ObserveThrottle(d time.Duration) {
	if m != nil {
		m.ThrottleWait.Observe(d.Seconds())
	}
}
