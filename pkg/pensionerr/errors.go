// Package pensionerr defines the classified failures returned by the pension
// engine. Every guard violation carries a Kind so callers can render a precise
// message without parsing strings.
package pensionerr

import (
	"errors"
	"fmt"
)

// Category groups kinds for transport mapping.
type Category string

const (
	CategoryAuthorization     Category = "authorization"
	CategoryStatePrecondition Category = "state_precondition"
	CategoryValidation        Category = "validation"
	CategoryNotFound          Category = "not_found"
	CategoryInternal          Category = "internal"
)

type Kind string

// Authorization
const (
	NotAdmin       Kind = "NotAdmin"
	NotNominee     Kind = "NotNominee"
	NotParticipant Kind = "NotParticipant"
)

// State preconditions
const (
	AlreadyRegistered         Kind = "AlreadyRegistered"
	ApplicationNotPending     Kind = "ApplicationNotPending"
	ApplicationNotApproved    Kind = "ApplicationNotApproved"
	AccountNotActive          Kind = "AccountNotActive"
	AccountClosed             Kind = "AccountClosed"
	ClosureNotRequested       Kind = "ClosureNotRequested"
	DocumentsIncomplete       Kind = "DocumentsIncomplete"
	GpsNotVerified            Kind = "GpsNotVerified"
	NotGpsPensioner           Kind = "NotGpsPensioner"
	NotPrssPensioner          Kind = "NotPrssPensioner"
	DocumentNotSubmitted      Kind = "DocumentNotSubmitted"
	DocumentNotResubmittable  Kind = "DocumentNotResubmittable"
	SubmissionClosed          Kind = "SubmissionClosed"
	PensionNotStarted         Kind = "PensionNotStarted"
	PensionAlreadyStarted     Kind = "PensionAlreadyStarted"
	NotRetirementAge          Kind = "NotRetirementAge"
	InsufficientContributions Kind = "InsufficientContributions"
	InsufficientFund          Kind = "InsufficientFund"
	ModeAlreadyChosen         Kind = "ModeAlreadyChosen"
	MonthlyModeNotChosen      Kind = "MonthlyModeNotChosen"
	LumpSumWithdrawn          Kind = "LumpSumWithdrawn"
	AlreadyDeceased           Kind = "AlreadyDeceased"
	DeathAlreadyReported      Kind = "DeathAlreadyReported"
	NoDeathReport             Kind = "NoDeathReport"
	PensionerNotDeceased      Kind = "PensionerNotDeceased"
	ClaimAlreadyApplied       Kind = "ClaimAlreadyApplied"
	ClaimAlreadyApproved      Kind = "ClaimAlreadyApproved"
	ClaimNotApplied           Kind = "ClaimNotApplied"
	ClaimNotApproved          Kind = "ClaimNotApproved"
	NomineeMonthlyNotAllowed  Kind = "NomineeMonthlyNotAllowed"
	FamilyPensionPeriodEnded  Kind = "FamilyPensionPeriodEnded"
	GratuityAlreadyClaimed    Kind = "GratuityAlreadyClaimed"
	TooEarly                  Kind = "TooEarly"
	AlreadyPaidThisMonth      Kind = "AlreadyPaidThisMonth"
)

// Validation
const (
	InvalidDateOfBirth       Kind = "InvalidDateOfBirth"
	InvalidNominee           Kind = "InvalidNominee"
	MissingRequiredField     Kind = "MissingRequiredField"
	BelowMinimumAge          Kind = "BelowMinimumAge"
	BelowMinimumServiceYears Kind = "BelowMinimumServiceYears"
	InvalidAmount            Kind = "InvalidAmount"
	ProgramMismatch          Kind = "ProgramMismatch"
	ProofMismatch            Kind = "ProofMismatch"
	DuplicateDocument        Kind = "DuplicateDocument"
)

// Not found
const (
	ParticipantNotFound Kind = "ParticipantNotFound"
	DocumentNotFound    Kind = "DocumentNotFound"
)

const Internal Kind = "Internal"

var categories = map[Kind]Category{
	NotAdmin:       CategoryAuthorization,
	NotNominee:     CategoryAuthorization,
	NotParticipant: CategoryAuthorization,

	InvalidDateOfBirth:       CategoryValidation,
	InvalidNominee:           CategoryValidation,
	MissingRequiredField:     CategoryValidation,
	BelowMinimumAge:          CategoryValidation,
	BelowMinimumServiceYears: CategoryValidation,
	InvalidAmount:            CategoryValidation,
	ProgramMismatch:          CategoryValidation,
	ProofMismatch:            CategoryValidation,
	DuplicateDocument:        CategoryValidation,

	ParticipantNotFound: CategoryNotFound,
	DocumentNotFound:    CategoryNotFound,

	Internal: CategoryInternal,
}

// Category reports the group of k. Kinds not listed explicitly are state
// preconditions.
func (k Kind) Category() Category {
	if c, ok := categories[k]; ok {
		return c
	}
	return CategoryStatePrecondition
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so sentinel-style comparison works:
// errors.Is(err, pensionerr.New(pensionerr.TooEarly, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain, or
// Internal for unclassified errors. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
