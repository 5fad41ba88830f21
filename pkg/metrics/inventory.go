package metrics

import "github.com/prometheus/client_golang/prometheus"

// Bulk update outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// InventoryMetrics tracks bulk stock updates.
type InventoryMetrics struct {
	batches   *prometheus.CounterVec
	batchSize prometheus.Histogram
}

// NewInventoryMetrics registers the inventory collectors.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_bulk_updates_total",
		Help: "Bulk inventory batches by outcome.",
	}, []string{"outcome"})
	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_bulk_batch_size",
		Help:    "Distinct products per applied bulk inventory batch.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
	reg.MustRegister(batches, batchSize)
	return &InventoryMetrics{batches: batches, batchSize: batchSize}
}

// ObserveBatch records a finished batch. Size is only sampled for applied batches.
func (m *InventoryMetrics) ObserveBatch(outcome string, size int) {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	if outcome == OutcomeApplied {
		m.batchSize.Observe(float64(size))
	}
}
