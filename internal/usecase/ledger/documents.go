package ledger

import (
	"errors"
	"strings"

	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/pensionerr"
)

// CheckSlot validates that t is part of group g.
func CheckSlot(g document.Group, t document.Type) error {
	if !g.Valid() {
		return pensionerr.Newf(pensionerr.DocumentNotFound, "unknown document group %q", g)
	}
	if !document.InGroup(g, t) {
		return pensionerr.Newf(pensionerr.DocumentNotFound, "%q is not part of %s", t, g)
	}
	return nil
}

// Document returns the stored slot, or a Missing placeholder.
func (o Op) Document(p *participant.Participant, g document.Group, t document.Type) (*document.Document, error) {
	d, err := o.Repos.Documents.Get(o.Ctx, p.ID, g, t)
	if errors.Is(err, document.ErrNotFound) {
		return document.Missing(p.ID, g, t), nil
	}
	if err != nil {
		return nil, pensionerr.Wrap(err, pensionerr.Internal, "load document")
	}
	return d, nil
}

// SubmitDocument stores ref in the slot and records the submission.
func (o Op) SubmitDocument(p *participant.Participant, g document.Group, t document.Type, ref string) (*document.Document, error) {
	if err := CheckSlot(g, t); err != nil {
		return nil, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, pensionerr.Newf(pensionerr.MissingRequiredField, "content reference for %s", t)
	}
	d, err := o.Document(p, g, t)
	if err != nil {
		return nil, err
	}
	if err := d.Submit(ref, o.Now); err != nil {
		return nil, documentError(err, t)
	}
	if err := o.Repos.Documents.Upsert(o.Ctx, d); err != nil {
		return nil, pensionerr.Wrap(err, pensionerr.Internal, "save document")
	}
	if err := o.Record(audit.ActionDocumentSubmitted, string(g)+"/"+string(t), 0); err != nil {
		return nil, err
	}
	return d, nil
}

// ReviewDocument applies an admin decision to a submitted slot.
func (o Op) ReviewDocument(p *participant.Participant, g document.Group, t document.Type, approve bool, reason string) (*document.Document, error) {
	if err := CheckSlot(g, t); err != nil {
		return nil, err
	}
	d, err := o.Document(p, g, t)
	if err != nil {
		return nil, err
	}
	if err := d.Review(approve, strings.TrimSpace(reason), o.Caller.Wallet, o.Now); err != nil {
		return nil, documentError(err, t)
	}
	if err := o.Repos.Documents.Upsert(o.Ctx, d); err != nil {
		return nil, pensionerr.Wrap(err, pensionerr.Internal, "save document")
	}
	action, detail := audit.ActionDocumentApproved, string(g)+"/"+string(t)
	if !approve {
		action, detail = audit.ActionDocumentRejected, detail+": "+d.RejectReason
	}
	if err := o.Record(action, detail, 0); err != nil {
		return nil, err
	}
	return d, nil
}

func documentError(err error, t document.Type) error {
	switch {
	case errors.Is(err, document.ErrNotResubmittable):
		return pensionerr.Wrap(err, pensionerr.DocumentNotResubmittable, string(t))
	case errors.Is(err, document.ErrNotSubmitted):
		return pensionerr.Wrap(err, pensionerr.DocumentNotSubmitted, string(t))
	case errors.Is(err, document.ErrReasonRequired):
		return pensionerr.Wrap(err, pensionerr.MissingRequiredField, string(t))
	}
	return pensionerr.Wrap(err, pensionerr.Internal, string(t))
}
