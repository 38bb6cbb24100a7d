package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrichment cache and its quota.
type Metrics struct {
	// Cache lookups by tier and result
	Lookups *prometheus.CounterVec

	// Paid provider calls by endpoint and outcome category
	NetworkCalls *prometheus.CounterVec

	// Calls skipped because the monthly budget is spent
	QuotaRefusals *prometheus.CounterVec

	// Calls spent in the current month
	QuotaUsed prometheus.Gauge

	// Durable tier failures by operation
	DurableErrors *prometheus.CounterVec
}

// New creates a new Metrics instance with all enrichment metrics registered.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_enrichment_lookups_total",
			Help: "Enrichment cache lookups by tier and result",
		}, []string{"tier", "result"}), // tier: "memory", "durable", "network"; result: "hit", "miss"

		NetworkCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_enrichment_network_calls_total",
			Help: "Calls made to the secondary provider by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		QuotaRefusals: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_enrichment_quota_refusals_total",
			Help: "Provider calls refused because the monthly ceiling was reached",
		}, []string{"caller"}),

		QuotaUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "taxappeal_enrichment_quota_used",
			Help: "Provider calls spent in the current month",
		}),

		DurableErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxappeal_enrichment_durable_errors_total",
			Help: "Durable cache tier failures by operation",
		}, []string{"op"}),
	}
}

// RecordHit records a cache hit in the given tier.
func (m *Metrics) RecordHit(tier string) {
	if m != nil {
		m.Lookups.WithLabelValues(tier, "hit").Inc()
	}
}

// RecordMiss records a cache miss in the given tier.
func (m *Metrics) RecordMiss(tier string) {
	if m != nil {
		m.Lookups.WithLabelValues(tier, "miss").Inc()
	}
}

// RecordNetworkCall records one provider call.
func (m *Metrics) RecordNetworkCall(endpoint, outcome string) {
	if m != nil {
		m.NetworkCalls.WithLabelValues(endpoint, outcome).Inc()
	}
}

// RecordQuotaRefusal records a call refused by the monthly ceiling.
func (m *Metrics) RecordQuotaRefusal(caller string) {
	if m != nil {
		m.QuotaRefusals.WithLabelValues(caller).Inc()
	}
}

// SetQuotaUsed publishes the current month's usage.
func (m *Metrics) SetQuotaUsed(used int) {
	if m != nil {
		m.QuotaUsed.Set(float64(used))
	}
}

// RecordDurableError records a durable tier failure.
func (m *Metrics) RecordDurableError(op string) {
	if m != nil {
		m.DurableErrors.WithLabelValues(op).Inc()
	}
}
