package benefit

import "pension-ledger/pkg/money"

// MinServiceYears is the lowest bracket that earns a GPS monthly pension.
const MinServiceYears = 10

// PercentByYears is the GPS pension step function over verified service years.
func PercentByYears(years int) int64 {
	switch {
	case years >= 25:
		return 80
	case years >= 20:
		return 64
	case years >= 15:
		return 48
	case years >= 10:
		return 32
	}
	return 0
}

func GPSMonthlyPension(salary money.Amount, years int) money.Amount {
	return salary.MulDiv(PercentByYears(years), 100)
}

// GPSGratuity is salary times years, independent of the pension bracket.
func GPSGratuity(salary money.Amount, years int) money.Amount {
	if years <= 0 {
		return 0
	}
	return salary.MulInt(int64(years))
}

// Sufficiency is an administrative planning figure; it never blocks a
// participant-facing action.
type Sufficiency struct {
	Gratuity        money.Amount `json:"gratuity"`
	MonthlyPension  money.Amount `json:"monthly_pension"`
	Recommended     money.Amount `json:"recommended"`
	AllocatedToDate money.Amount `json:"allocated_to_date"`
	Shortfall       money.Amount `json:"shortfall"`
}

func GPSFundSufficiency(salary money.Amount, years int, allocatedToDate money.Amount) Sufficiency {
	s := Sufficiency{
		Gratuity:        GPSGratuity(salary, years),
		MonthlyPension:  GPSMonthlyPension(salary, years),
		AllocatedToDate: allocatedToDate,
	}
	s.Recommended = s.Gratuity + s.MonthlyPension.MulInt(12)
	if short := s.Recommended - allocatedToDate; short > 0 {
		s.Shortfall = short
	}
	return s
}
