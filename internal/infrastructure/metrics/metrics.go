// Package metrics exposes operation and payout counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"pension-ledger/pkg/money"
)

type Metrics struct {
	operations   *prometheus.CounterVec
	payouts      *prometheus.CounterVec
	payoutAmount *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_operations_total",
			Help: "Ledger operations by name and outcome (ok or failure kind).",
		}, []string{"operation", "outcome"}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_payouts_total",
			Help: "Committed payments by kind.",
		}, []string{"kind"}),
		payoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_payout_amount_minor_total",
			Help: "Sum of committed payments in ledger minor units, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.operations, m.payouts, m.payoutAmount)
	return m
}

func (m *Metrics) ObserveOperation(op, outcome string) {
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObservePayout(kind string, amount money.Amount) {
	m.payouts.WithLabelValues(kind).Inc()
	if amount > 0 {
		m.payoutAmount.WithLabelValues(kind).Add(float64(amount))
	}
}
