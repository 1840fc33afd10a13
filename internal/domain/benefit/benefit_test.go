package benefit

import (
	"testing"
	"time"

	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/money"
)

func TestPercentByYears(t *testing.T) {
	tests := []struct {
		years int
		want  int64
	}{
		{0, 0}, {9, 0}, {10, 32}, {14, 32}, {15, 48}, {19, 48},
		{20, 64}, {24, 64}, {25, 80}, {40, 80},
	}
	for _, tt := range tests {
		if got := PercentByYears(tt.years); got != tt.want {
			t.Fatalf("PercentByYears(%d) = %d, want %d", tt.years, got, tt.want)
		}
	}
}

func TestPercentByYearsMonotonic(t *testing.T) {
	prev := int64(0)
	for y := 0; y <= 50; y++ {
		p := PercentByYears(y)
		if p < prev {
			t.Fatalf("percent dropped at %d years: %d < %d", y, p, prev)
		}
		prev = p
	}
}

func TestGPSMonthlyPension(t *testing.T) {
	if got := GPSMonthlyPension(money.Major(15000), 12); got != money.Major(4800) {
		t.Fatalf("monthly = %s, want 4800.00", got)
	}
	if got := GPSMonthlyPension(money.Major(15000), 9); got != 0 {
		t.Fatalf("monthly below bracket = %s, want 0", got)
	}
}

func TestGPSGratuityIsMultiplicative(t *testing.T) {
	if got := GPSGratuity(money.Major(20000), 20); got != money.Major(400000) {
		t.Fatalf("gratuity = %s, want 400000.00", got)
	}
	// independent of the bracket
	if got := GPSGratuity(money.Major(20000), 5); got != money.Major(100000) {
		t.Fatalf("gratuity = %s, want 100000.00", got)
	}
}

func TestGPSFundSufficiency(t *testing.T) {
	s := GPSFundSufficiency(money.Major(20000), 20, money.Major(100000))
	// gratuity 400000 + 12 * 12800
	if s.Recommended != money.Major(553600) {
		t.Fatalf("recommended = %s", s.Recommended)
	}
	if s.Shortfall != money.Major(453600) {
		t.Fatalf("shortfall = %s", s.Shortfall)
	}
	over := GPSFundSufficiency(money.Major(20000), 20, money.Major(1_000_000))
	if over.Shortfall != 0 {
		t.Fatalf("shortfall should clamp at 0, got %s", over.Shortfall)
	}
}

func TestSchemeMinMonths(t *testing.T) {
	cases := map[participant.Scheme]int{
		participant.SchemeDPS:              12,
		participant.SchemeProvidentFund:    24,
		participant.SchemeRetirementFund:   36,
		participant.SchemeInsurancePension: 60,
	}
	for s, want := range cases {
		if got := SchemeMinMonths(s); got != want {
			t.Fatalf("%s: %d, want %d", s, got, want)
		}
	}
	if got := PRSSMonthlyAmount(money.Major(36000), participant.SchemeRetirementFund); got != money.Major(1000) {
		t.Fatalf("PRSSMonthlyAmount = %s", got)
	}
}

func TestLookupPlan(t *testing.T) {
	p, ok := LookupPlan(participant.SchemeRetirementFund, "rf_1000")
	if !ok || p.Contribution != money.Major(1000) {
		t.Fatalf("rf_1000 lookup = %+v %v", p, ok)
	}
	if _, ok := LookupPlan(participant.SchemeDPS, "rf_1000"); ok {
		t.Fatal("plan must be scoped to its scheme")
	}
	if n := len(Plans(participant.SchemeInsurancePension)); n != 3 {
		t.Fatalf("insurance plans = %d", n)
	}
}

func TestParseDOB(t *testing.T) {
	for _, bad := range []int{18991231, 21010101, 20230231, 20231301, 0} {
		if _, err := ParseDOB(bad); err != ErrInvalidDOB {
			t.Fatalf("ParseDOB(%d) err = %v", bad, err)
		}
	}
	got, err := ParseDOB(19600229)
	if err != nil {
		t.Fatalf("leap day: %v", err)
	}
	if got.Month() != time.February || got.Day() != 29 {
		t.Fatalf("got %v", got)
	}
}

func TestAges(t *testing.T) {
	dob, _ := ParseDOB(19650615)
	if got := AgeAt(dob, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)); got != 59 {
		t.Fatalf("day before birthday = %d", got)
	}
	if got := AgeAt(dob, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)); got != 60 {
		t.Fatalf("on birthday = %d", got)
	}
	if got := YearAge(20071231, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); got != 18 {
		t.Fatalf("YearAge = %d", got)
	}
	if got := Period(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)); got != 202503 {
		t.Fatalf("Period = %d", got)
	}
}
