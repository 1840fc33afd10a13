package disbursement

import (
	"time"

	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/money"
)

// MonthlyInterval is the minimum gap between two monthly payouts.
const MonthlyInterval = 30 * 24 * time.Hour

type Kind string

const (
	KindMonthly         Kind = "monthly"
	KindLumpSum         Kind = "lump_sum"
	KindGratuity        Kind = "gps_gratuity"
	KindNomineeMonthly  Kind = "nominee_monthly"
	KindNomineeLumpSum  Kind = "nominee_lump_sum"
	KindNomineeGratuity Kind = "nominee_gps_gratuity"
)

// Payment is a payout instruction. Settlement happens outside the engine, at
// the treasury named by Beneficiary.
type Payment struct {
	ID          string       `json:"payment_id"`
	Participant string       `json:"participant"`
	Beneficiary string       `json:"beneficiary"`
	Kind        Kind         `json:"kind"`
	Amount      money.Amount `json:"amount"`
	PaidAt      time.Time    `json:"paid_at"`
}

type Result struct {
	Participant *participant.Participant `json:"participant"`
	Payment     *Payment                 `json:"payment,omitempty"`
}

// PayoutObserver is told about every committed payment.
type PayoutObserver interface {
	ObservePayout(kind string, amount money.Amount)
}

type nopPayouts struct{}

func (nopPayouts) ObservePayout(string, money.Amount) {}
