package enrollment

import (
	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/money"
)

type RegisterInput struct {
	Program     participant.Program
	DateOfBirth int // YYYYMMDD

	// PRSS
	Scheme participant.Scheme
	PlanID string

	// GPS, quoted in local currency
	DeclaredSalary       money.Amount
	DeclaredServiceYears int
	EmployeeID           string
	Designation          string

	NomineeWallet   string
	NomineeName     string
	NomineeRelation string
}

type VerifyGPSInput struct {
	Salary     money.Amount // local currency
	Years      int
	EmployeeID string
}
