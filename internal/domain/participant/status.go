package participant

import "strings"

type Program string

const (
	ProgramGPS  Program = "gps"
	ProgramPRSS Program = "prss"
)

func (p Program) Valid() bool { return p == ProgramGPS || p == ProgramPRSS }

type ApplicationStatus string

const (
	ApplicationNotRegistered ApplicationStatus = "not_registered"
	ApplicationPending       ApplicationStatus = "pending"
	ApplicationApproved      ApplicationStatus = "approved"
	ApplicationRejected      ApplicationStatus = "rejected"
)

type AccountStatus string

const (
	AccountActive           AccountStatus = "active"
	AccountClosureRequested AccountStatus = "closure_requested"
	AccountClosed           AccountStatus = "closed"
)

type DeathReportStatus string

const (
	DeathNone     DeathReportStatus = "none"
	DeathReported DeathReportStatus = "reported"
	DeathVerified DeathReportStatus = "verified"
	DeathRejected DeathReportStatus = "rejected"
)

type ClaimStatus string

const (
	ClaimNone     ClaimStatus = "none"
	ClaimApplied  ClaimStatus = "applied"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)

// Scheme is the PRSS savings product a participant contributes to.
type Scheme string

const (
	SchemeDPS              Scheme = "dps"
	SchemeRetirementFund   Scheme = "retirement_fund"
	SchemeProvidentFund    Scheme = "provident_fund"
	SchemeInsurancePension Scheme = "insurance_pension"
)

func (s Scheme) Valid() bool {
	switch s {
	case SchemeDPS, SchemeRetirementFund, SchemeProvidentFund, SchemeInsurancePension:
		return true
	}
	return false
}

type PensionMode string

const (
	ModeNotChosen PensionMode = "not_chosen"
	ModeMonthly   PensionMode = "monthly"
	ModeLumpSum   PensionMode = "lump_sum"
)

// Relation is the nominee's relation category; it decides the family pension cap.
type Relation string

const (
	RelationSpouse Relation = "spouse"
	RelationChild  Relation = "child"
	RelationParent Relation = "parent"
	RelationOther  Relation = "other"
)

// ParseRelation folds the free-text relation captured at registration into a
// category.
func ParseRelation(s string) Relation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spouse", "wife", "husband":
		return RelationSpouse
	case "child", "son", "daughter":
		return RelationChild
	case "parent", "father", "mother":
		return RelationParent
	}
	return RelationOther
}
