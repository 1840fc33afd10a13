package participant

import (
	"errors"
	"time"

	"pension-ledger/pkg/money"
)

var (
	ErrNotFound  = errors.New("participant not found")
	ErrDuplicate = errors.New("participant already exists")
)

// GPSRecord holds applicant-declared figures next to the admin-attested ones.
// Only the verified figures feed payout math.
type GPSRecord struct {
	DeclaredSalary       money.Amount `gorm:"column:declared_salary;type:bigint" json:"declared_salary"`
	DeclaredServiceYears int          `gorm:"column:declared_service_years" json:"declared_service_years"`
	EmployeeID           string       `gorm:"column:employee_id;size:64" json:"employee_id"`
	Designation          string       `gorm:"column:designation;size:128" json:"designation"`
	VerifiedSalary       money.Amount `gorm:"column:verified_salary;type:bigint" json:"verified_salary"`
	VerifiedServiceYears int          `gorm:"column:verified_service_years" json:"verified_service_years"`
	VerifiedEmployeeID   string       `gorm:"column:verified_employee_id;size:64" json:"verified_employee_id"`
	Verified             bool         `gorm:"column:verified" json:"verified"`
}

type Nominee struct {
	Wallet   string   `gorm:"column:wallet;size:64;index" json:"wallet"`
	Name     string   `gorm:"column:name;size:128" json:"name"`
	Relation Relation `gorm:"column:relation;type:varchar(16)" json:"relation"`
}

type DeathReport struct {
	Status       DeathReportStatus `gorm:"column:status;type:varchar(16)" json:"status"`
	ProofRef     string            `gorm:"column:proof_ref;type:text" json:"proof_ref,omitempty"`
	RejectReason string            `gorm:"column:reject_reason;type:text" json:"reject_reason,omitempty"`
	IsDeceased   bool              `gorm:"column:is_deceased" json:"is_deceased"`
}

type NomineeClaim struct {
	Status           ClaimStatus `gorm:"column:status;type:varchar(16)" json:"status"`
	NIDRef           string      `gorm:"column:nid_ref;type:text" json:"nid_ref,omitempty"`
	RelationProofRef string      `gorm:"column:relation_proof_ref;type:text" json:"relation_proof_ref,omitempty"`
	RejectReason     string      `gorm:"column:reject_reason;type:text" json:"reject_reason,omitempty"`
}

// FundBalance is the per-participant balance. PRSS fields move only on accepted
// contributions; GPS fields move on admin allocation and on payout.
type FundBalance struct {
	TotalContributions     money.Amount `gorm:"column:total_contributions;type:bigint" json:"total_contributions"`
	MonthlyPaymentsCount   int          `gorm:"column:monthly_payments_count" json:"monthly_payments_count"`
	LastContributionPeriod int          `gorm:"column:last_contribution_period" json:"last_contribution_period"`
	AllocatedRemaining     money.Amount `gorm:"column:allocated_remaining;type:bigint" json:"allocated_remaining"`
	AllocatedTotal         money.Amount `gorm:"column:allocated_total;type:bigint" json:"allocated_total"`
}

type Disbursement struct {
	Started                     bool         `gorm:"column:started" json:"started"`
	StartedAt                   *time.Time   `gorm:"column:started_at" json:"started_at,omitempty"`
	MonthlyAmount               money.Amount `gorm:"column:monthly_amount;type:bigint" json:"monthly_amount"`
	Mode                        PensionMode  `gorm:"column:mode;type:varchar(16)" json:"pension_mode"`
	LumpSumWithdrawn            bool         `gorm:"column:lump_sum_withdrawn" json:"lump_sum_withdrawn"`
	GratuityClaimed             bool         `gorm:"column:gratuity_claimed" json:"gps_gratuity_claimed"`
	LastWithdrawalAt            *time.Time   `gorm:"column:last_withdrawal_at" json:"last_withdrawal_at,omitempty"`
	TotalPaidOut                money.Amount `gorm:"column:total_paid_out;type:bigint" json:"total_paid_out"`
	NomineeMonthlyWithdrawCount int          `gorm:"column:nominee_monthly_withdraw_count" json:"nominee_monthly_withdraw_count"`
	NomineeMaxMonthsAllowed     int          `gorm:"column:nominee_max_months_allowed" json:"nominee_max_months_allowed"`
	NomineeMonthlyAllowed       bool         `gorm:"column:nominee_monthly_allowed" json:"nominee_monthly_allowed"`
}

// Participant is the aggregate root. Documents hang off it by ID; balances and
// the disbursement record are embedded so a single row lock isolates the whole
// aggregate.
type Participant struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	Wallet string `gorm:"size:64;uniqueIndex:ux_participants_wallet" json:"wallet"`

	Program                 Program           `gorm:"type:varchar(8)" json:"program"`
	ApplicationStatus       ApplicationStatus `gorm:"type:varchar(16);index:idx_participants_app_status" json:"application_status"`
	ApplicationRejectReason string            `gorm:"type:text" json:"application_reject_reason,omitempty"`

	AccountStatus      AccountStatus `gorm:"type:varchar(24)" json:"account_status"`
	ClosureReason      string        `gorm:"type:text" json:"closure_reason,omitempty"`
	ClosureRequestedAt *time.Time    `json:"closure_requested_at,omitempty"`
	ClosedAt           *time.Time    `json:"closed_at,omitempty"`

	DateOfBirth int `json:"date_of_birth"`

	Scheme              Scheme       `gorm:"type:varchar(24)" json:"scheme,omitempty"`
	PlanID              string       `gorm:"size:32" json:"plan_id,omitempty"`
	MonthlyContribution money.Amount `gorm:"type:bigint" json:"monthly_contribution"`

	GPS          GPSRecord    `gorm:"embedded;embeddedPrefix:gps_" json:"gps"`
	Nominee      Nominee      `gorm:"embedded;embeddedPrefix:nominee_" json:"nominee"`
	Death        DeathReport  `gorm:"embedded;embeddedPrefix:death_" json:"death"`
	Claim        NomineeClaim `gorm:"embedded;embeddedPrefix:claim_" json:"nominee_claim"`
	Fund         FundBalance  `gorm:"embedded;embeddedPrefix:fund_" json:"fund"`
	Disbursement Disbursement `gorm:"embedded;embeddedPrefix:disb_" json:"disbursement"`

	Version   uint64    `json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Participant) TableName() string { return "participants" }

func (p *Participant) IsGPS() bool  { return p.Program == ProgramGPS }
func (p *Participant) IsPRSS() bool { return p.Program == ProgramPRSS }

func (p *Participant) IsClosed() bool { return p.AccountStatus == AccountClosed }

// SuccessionActive reports whether disbursement rights have moved to the nominee.
func (p *Participant) SuccessionActive() bool {
	return p.Death.IsDeceased && p.Claim.Status == ClaimApproved
}

// PRSSBalance is what is left of the participant's own contributions.
func (p *Participant) PRSSBalance() money.Amount {
	return p.Fund.TotalContributions - p.Disbursement.TotalPaidOut
}

// Clone returns a deep copy; pointer fields are duplicated so the copy can be
// mutated independently.
func (p *Participant) Clone() *Participant {
	c := *p
	c.ClosureRequestedAt = cloneTime(p.ClosureRequestedAt)
	c.ClosedAt = cloneTime(p.ClosedAt)
	c.Disbursement.StartedAt = cloneTime(p.Disbursement.StartedAt)
	c.Disbursement.LastWithdrawalAt = cloneTime(p.Disbursement.LastWithdrawalAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
