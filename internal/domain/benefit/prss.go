package benefit

import (
	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/money"
)

// SchemeMinMonths is how many monthly contributions a scheme needs before the
// pension can start.
func SchemeMinMonths(s participant.Scheme) int {
	switch s {
	case participant.SchemeDPS:
		return 12
	case participant.SchemeProvidentFund:
		return 24
	case participant.SchemeRetirementFund:
		return 36
	case participant.SchemeInsurancePension:
		return 60
	}
	return 12
}

// PRSSMonthlyAmount spreads the accrued balance over the scheme's minimum term.
func PRSSMonthlyAmount(total money.Amount, s participant.Scheme) money.Amount {
	return total.MulDiv(1, int64(SchemeMinMonths(s)))
}

// Plan is a fixed monthly contribution product, quoted in local currency.
type Plan struct {
	ID            string             `json:"id"`
	Scheme        participant.Scheme `json:"scheme"`
	Name          string             `json:"name"`
	Contribution  money.Amount       `json:"contribution"`
	TargetPension money.Amount       `json:"target_pension"`
}

var plans = []Plan{
	{"dps_500", participant.SchemeDPS, "DPS Starter", money.Major(500), money.Major(8000)},
	{"dps_1000", participant.SchemeDPS, "DPS Basic", money.Major(1000), money.Major(12000)},
	{"dps_2000", participant.SchemeDPS, "DPS Plus", money.Major(2000), money.Major(20000)},
	{"rf_1000", participant.SchemeRetirementFund, "Retirement Silver", money.Major(1000), money.Major(15000)},
	{"rf_2000", participant.SchemeRetirementFund, "Retirement Gold", money.Major(2000), money.Major(25000)},
	{"rf_3000", participant.SchemeRetirementFund, "Retirement Platinum", money.Major(3000), money.Major(35000)},
	{"pf_2000", participant.SchemeProvidentFund, "Provident Silver", money.Major(2000), money.Major(28000)},
	{"pf_3000", participant.SchemeProvidentFund, "Provident Gold", money.Major(3000), money.Major(38000)},
	{"pf_5000", participant.SchemeProvidentFund, "Provident Elite", money.Major(5000), money.Major(60000)},
	{"ip_3000", participant.SchemeInsurancePension, "Insurance Gold", money.Major(3000), money.Major(42000)},
	{"ip_5000", participant.SchemeInsurancePension, "Insurance Platinum", money.Major(5000), money.Major(65000)},
	{"ip_10000", participant.SchemeInsurancePension, "Insurance Ultra", money.Major(10000), money.Major(120000)},
}

// LookupPlan finds a plan offered under scheme.
func LookupPlan(s participant.Scheme, id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id && p.Scheme == s {
			return p, true
		}
	}
	return Plan{}, false
}

// Plans lists the plans of a scheme.
func Plans(s participant.Scheme) []Plan {
	var out []Plan
	for _, p := range plans {
		if p.Scheme == s {
			out = append(out, p)
		}
	}
	return out
}
