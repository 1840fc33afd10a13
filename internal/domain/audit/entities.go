package audit

import (
	"context"
	"time"

	"pension-ledger/pkg/money"
)

type Action string

const (
	ActionRegistered         Action = "registered"
	ActionApplicationApprove Action = "application_approved"
	ActionApplicationReject  Action = "application_rejected"
	ActionGPSVerified        Action = "gps_verified"
	ActionClosureRequested   Action = "closure_requested"
	ActionAccountClosed      Action = "account_closed"

	ActionDocumentSubmitted Action = "document_submitted"
	ActionDocumentApproved  Action = "document_approved"
	ActionDocumentRejected  Action = "document_rejected"

	ActionDeathReported Action = "death_reported"
	ActionDeathVerified Action = "death_verified"
	ActionDeathRejected Action = "death_rejected"
	ActionClaimApplied  Action = "nominee_claim_applied"
	ActionClaimApproved Action = "nominee_claim_approved"
	ActionClaimRejected Action = "nominee_claim_rejected"

	ActionGPSFundAllocated  Action = "gps_fund_allocated"
	ActionContributionMade  Action = "contribution_made"
	ActionPensionStarted    Action = "pension_started"
	ActionMonthlyChosen     Action = "monthly_mode_chosen"
	ActionMonthlyPaid       Action = "monthly_pension_paid"
	ActionLumpSumPaid       Action = "lump_sum_paid"
	ActionGratuityPaid      Action = "gps_gratuity_paid"
	ActionNomineeMonthlyPay Action = "nominee_monthly_pension_paid"
)

// Entry is one row of the append-only history. It is written in the same
// transaction as the mutation it describes.
type Entry struct {
	ID         uint64       `gorm:"primaryKey;column:id" json:"-"`
	EntryID    string       `gorm:"column:entry_id;size:32;uniqueIndex" json:"entry_id"`
	Wallet     string       `gorm:"column:participant_wallet;size:64;index:idx_audit_wallet" json:"participant"`
	Actor      string       `gorm:"column:actor;size:64" json:"actor"`
	Action     Action       `gorm:"column:action;type:varchar(40);index:idx_audit_action" json:"action"`
	Detail     string       `gorm:"column:detail;type:text" json:"detail,omitempty"`
	Amount     money.Amount `gorm:"column:amount;type:bigint" json:"amount,omitempty"`
	OccurredAt time.Time    `gorm:"column:occurred_at;index" json:"occurred_at"`
}

func (Entry) TableName() string { return "audit_entries" }

type Filter struct {
	Wallet string
	Action Action
	Limit  int
}

type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// List returns entries oldest first.
	List(ctx context.Context, f Filter) ([]Entry, error)
}
