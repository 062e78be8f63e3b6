package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillMetrics records bill calculation outcomes.
type BillMetrics struct {
	Calculations *prometheus.CounterVec
	Discounts    *prometheus.HistogramVec
	Lookups      *prometheus.CounterVec
}

// NewBillMetrics registers and returns the billing collectors.
func NewBillMetrics(namespace string, reg prometheus.Registerer) *BillMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &BillMetrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_calculations_total",
			Help:      "Count of bill calculations by outcome and applied percentage discount.",
		}, []string{"result", "percentage_kind"}),
		Discounts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bill_discount_amount",
			Help:      "Distribution of total discount granted per calculated bill.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"percentage_kind"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_lookup_failures_total",
			Help:      "Count of customer and product lookups that failed during calculation.",
		}, []string{"entity", "reason"}),
	}
	register(reg, &m.Calculations)
	register(reg, &m.Discounts)
	register(reg, &m.Lookups)
	return m
}

// ObserveCalculation records one calculation. kind is empty when no percentage discount applied.
func (m *BillMetrics) ObserveCalculation(result, kind string, totalDiscount float64) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "NONE"
	}
	m.Calculations.WithLabelValues(result, kind).Inc()
	if result == "ok" {
		m.Discounts.WithLabelValues(kind).Observe(totalDiscount)
	}
}

// ObserveLookupFailure records a failed customer or product lookup.
func (m *BillMetrics) ObserveLookupFailure(entity, reason string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(entity, reason).Inc()
}
