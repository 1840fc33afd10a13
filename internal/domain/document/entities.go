package document

import (
	"errors"
	"time"

	"pension-ledger/internal/domain/participant"
)

var ErrNotFound = errors.New("document not found")

type Group string

const (
	GroupGPSPensioner  Group = "gps_pensioner"
	GroupPRSSPensioner Group = "prss_pensioner"
	GroupNomineeClaim  Group = "nominee_claim"
)

type Type string

const (
	NIDFront               Type = "nid_front"
	NIDBack                Type = "nid_back"
	Photo                  Type = "photo"
	BirthCertificate       Type = "birth_certificate"
	EmploymentCertificate  Type = "employment_certificate"
	ServiceRecord          Type = "service_record"
	LastPayslip            Type = "last_payslip"
	PensionApplicationForm Type = "pension_application_form"
	BankAccountProof       Type = "bank_account_proof"
	PresentAddressProof    Type = "present_address_proof"
	PermanentAddressProof  Type = "permanent_address_proof"
	NomineeForm            Type = "nominee_form"
	NomineeNID             Type = "nominee_nid"
	DeathCertificate       Type = "death_certificate"
	RelationshipProof      Type = "relationship_proof"
	NomineeBankProof       Type = "nominee_bank_proof"
)

var required = map[Group][]Type{
	GroupGPSPensioner: {
		NIDFront, NIDBack, Photo, BirthCertificate, EmploymentCertificate,
		ServiceRecord, LastPayslip, PensionApplicationForm, BankAccountProof,
	},
	GroupPRSSPensioner: {
		NIDFront, NIDBack, Photo, BirthCertificate, PresentAddressProof,
		PermanentAddressProof, BankAccountProof, NomineeForm, NomineeNID,
	},
	GroupNomineeClaim: {
		DeathCertificate, NomineeNID, RelationshipProof, NomineeBankProof,
	},
}

// RequiredTypes lists the documents a group needs, in display order.
func RequiredTypes(g Group) []Type {
	return append([]Type(nil), required[g]...)
}

// InGroup reports whether t belongs to group g.
func InGroup(g Group, t Type) bool {
	for _, x := range required[g] {
		if x == t {
			return true
		}
	}
	return false
}

func (g Group) Valid() bool {
	_, ok := required[g]
	return ok
}

// PensionerGroup is the document group a program's applicants must complete.
func PensionerGroup(p participant.Program) Group {
	if p == participant.ProgramGPS {
		return GroupGPSPensioner
	}
	return GroupPRSSPensioner
}

type Status string

const (
	StatusMissing   Status = "missing"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Document is one piece of evidence. ContentRef is opaque; the engine stores
// and compares it but never dereferences it.
type Document struct {
	ID            uint64     `gorm:"primaryKey;column:id" json:"-"`
	ParticipantID uint64     `gorm:"column:participant_id;not null;uniqueIndex:ux_documents_slot" json:"-"`
	Group         Group      `gorm:"column:doc_group;type:varchar(24);not null;uniqueIndex:ux_documents_slot" json:"group"`
	Type          Type       `gorm:"column:doc_type;type:varchar(32);not null;uniqueIndex:ux_documents_slot" json:"type"`
	Status        Status     `gorm:"column:status;type:varchar(16)" json:"status"`
	ContentRef    string     `gorm:"column:content_ref;type:text" json:"content_ref,omitempty"`
	RejectReason  string     `gorm:"column:reject_reason;type:text" json:"reject_reason,omitempty"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy    string     `gorm:"column:reviewed_by;size:64" json:"reviewed_by,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// Missing is the placeholder for a slot with no row yet.
func Missing(participantID uint64, g Group, t Type) *Document {
	return &Document{ParticipantID: participantID, Group: g, Type: t, Status: StatusMissing}
}

// Submit records evidence for the slot. Approved documents are final.
func (d *Document) Submit(ref string, at time.Time) error {
	if d.Status == StatusApproved {
		return ErrNotResubmittable
	}
	d.Status = StatusSubmitted
	d.ContentRef = ref
	d.RejectReason = ""
	d.SubmittedAt = &at
	d.ReviewedAt = nil
	d.ReviewedBy = ""
	return nil
}

// Review applies a reviewer decision to a submitted document.
func (d *Document) Review(approve bool, reason, reviewer string, at time.Time) error {
	if d.Status != StatusSubmitted {
		return ErrNotSubmitted
	}
	if approve {
		d.Status = StatusApproved
		d.RejectReason = ""
	} else {
		if reason == "" {
			return ErrReasonRequired
		}
		d.Status = StatusRejected
		d.RejectReason = reason
	}
	d.ReviewedAt = &at
	d.ReviewedBy = reviewer
	return nil
}

var (
	ErrNotResubmittable = errors.New("document already approved")
	ErrNotSubmitted     = errors.New("document not submitted")
	ErrReasonRequired   = errors.New("rejection reason required")
)
