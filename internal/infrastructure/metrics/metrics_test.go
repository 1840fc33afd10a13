package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"pension-ledger/pkg/money"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("withdraw_monthly_pension", "ok")
	m.ObserveOperation("withdraw_monthly_pension", "TooEarly")
	m.ObserveOperation("withdraw_monthly_pension", "TooEarly")
	m.ObservePayout("monthly", money.Major(4800))

	if got := testutil.ToFloat64(m.operations.WithLabelValues("withdraw_monthly_pension", "TooEarly")); got != 2 {
		t.Fatalf("TooEarly = %v", got)
	}
	if got := testutil.ToFloat64(m.payouts.WithLabelValues("monthly")); got != 1 {
		t.Fatalf("payouts = %v", got)
	}
	if got := testutil.ToFloat64(m.payoutAmount.WithLabelValues("monthly")); got != 480000 {
		t.Fatalf("payout amount = %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "pension_operations_total"); err != nil || n != 2 {
		t.Fatalf("series = %d err=%v", n, err)
	}
}
