// Package succession runs the two axes that move disbursement rights from a
// deceased participant to the registered nominee: the death report and the
// nominee claim.
package succession

import (
	"context"
	"fmt"
	"strings"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/pensionerr"
)

// DefaultFamilyPensionMonths caps monthly family pension for children and parents.
const DefaultFamilyPensionMonths = 24

type Policy struct {
	// FamilyPensionMonths applies to child and parent nominees. Spouses are
	// uncapped.
	FamilyPensionMonths int
}

type Usecase struct {
	run    *ledger.Runner
	policy Policy
}

func NewUsecase(run *ledger.Runner, policy Policy) *Usecase {
	if policy.FamilyPensionMonths <= 0 {
		policy.FamilyPensionMonths = DefaultFamilyPensionMonths
	}
	return &Usecase{run: run, policy: policy}
}

func (u *Usecase) ReportDeath(ctx context.Context, caller actor.Caller, wallet, proofRef string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "report_death", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireNominee(caller, p), ledger.RequireOpen(p), ledger.RequireApproved(p)); err != nil {
			return err
		}
		if p.Death.IsDeceased {
			return pensionerr.New(pensionerr.AlreadyDeceased, "death already verified")
		}
		if p.Death.Status == participant.DeathReported {
			return pensionerr.New(pensionerr.DeathAlreadyReported, "death report awaiting review")
		}
		d, err := op.SubmitDocument(p, document.GroupNomineeClaim, document.DeathCertificate, proofRef)
		if err != nil {
			return err
		}
		p.Death.Status = participant.DeathReported
		p.Death.ProofRef = d.ContentRef
		p.Death.RejectReason = ""
		return op.Record(audit.ActionDeathReported, d.ContentRef, 0)
	})
}

// VerifyDeath confirms a pending report. When proofRef is given it has to be
// the reference the nominee filed.
func (u *Usecase) VerifyDeath(ctx context.Context, caller actor.Caller, wallet, proofRef string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "verify_death", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.Death.Status != participant.DeathReported {
			return pensionerr.New(pensionerr.NoDeathReport, "no pending death report")
		}
		if ref := strings.TrimSpace(proofRef); ref != "" && ref != p.Death.ProofRef {
			return pensionerr.New(pensionerr.ProofMismatch, "proof does not match the reported certificate")
		}
		if err := settle(op, p, true, "", document.DeathCertificate); err != nil {
			return err
		}
		p.Death.Status = participant.DeathVerified
		p.Death.IsDeceased = true
		return op.Record(audit.ActionDeathVerified, p.Death.ProofRef, 0)
	})
}

func (u *Usecase) RejectDeath(ctx context.Context, caller actor.Caller, wallet, reason string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "reject_death", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.Death.Status != participant.DeathReported {
			return pensionerr.New(pensionerr.NoDeathReport, "no pending death report")
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "reason")
		}
		if err := settle(op, p, false, reason, document.DeathCertificate); err != nil {
			return err
		}
		p.Death.Status = participant.DeathRejected
		p.Death.RejectReason = reason
		return op.Record(audit.ActionDeathRejected, reason, 0)
	})
}

func (u *Usecase) ApplyNomineeClaim(ctx context.Context, caller actor.Caller, wallet, nidRef, relationProofRef string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "apply_nominee_claim", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireNominee(caller, p), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if !p.Death.IsDeceased {
			return pensionerr.New(pensionerr.PensionerNotDeceased, "death not verified")
		}
		switch p.Claim.Status {
		case participant.ClaimApplied:
			return pensionerr.New(pensionerr.ClaimAlreadyApplied, "claim awaiting review")
		case participant.ClaimApproved:
			return pensionerr.New(pensionerr.ClaimAlreadyApproved, "claim already approved")
		}
		nid, err := submitUnlessApproved(op, p, document.NomineeNID, nidRef)
		if err != nil {
			return err
		}
		proof, err := submitUnlessApproved(op, p, document.RelationshipProof, relationProofRef)
		if err != nil {
			return err
		}
		p.Claim.Status = participant.ClaimApplied
		p.Claim.NIDRef = nid
		p.Claim.RelationProofRef = proof
		p.Claim.RejectReason = ""
		return op.Record(audit.ActionClaimApplied, string(p.Nominee.Relation), 0)
	})
}

// ApproveNomineeClaim hands disbursement rights to the nominee. The family
// pension allowance is fixed here from the nominee's relation.
func (u *Usecase) ApproveNomineeClaim(ctx context.Context, caller actor.Caller, wallet string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "approve_nominee_claim", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.Claim.Status != participant.ClaimApplied {
			return pensionerr.New(pensionerr.ClaimNotApplied, "no pending nominee claim")
		}
		if err := settle(op, p, true, "", claimEvidence...); err != nil {
			return err
		}
		if err := requireClaimDocuments(op, p); err != nil {
			return err
		}
		p.Claim.Status = participant.ClaimApproved
		p.Disbursement.NomineeMonthlyAllowed, p.Disbursement.NomineeMaxMonthsAllowed = u.familyAllowance(p.Nominee.Relation)
		return op.Record(audit.ActionClaimApproved,
			fmt.Sprintf("relation=%s monthly=%t max_months=%d", p.Nominee.Relation,
				p.Disbursement.NomineeMonthlyAllowed, p.Disbursement.NomineeMaxMonthsAllowed), 0)
	})
}

func (u *Usecase) RejectNomineeClaim(ctx context.Context, caller actor.Caller, wallet, reason string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "reject_nominee_claim", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.Claim.Status != participant.ClaimApplied {
			return pensionerr.New(pensionerr.ClaimNotApplied, "no pending nominee claim")
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "reason")
		}
		if err := settle(op, p, false, reason, claimEvidence...); err != nil {
			return err
		}
		p.Claim.Status = participant.ClaimRejected
		p.Claim.RejectReason = reason
		return op.Record(audit.ActionClaimRejected, reason, 0)
	})
}

// familyAllowance returns whether the nominee may draw monthly and for how many
// months (0 means no limit).
func (u *Usecase) familyAllowance(r participant.Relation) (bool, int) {
	switch r {
	case participant.RelationSpouse:
		return true, 0
	case participant.RelationChild, participant.RelationParent:
		return true, u.policy.FamilyPensionMonths
	}
	return false, 0
}

// claimEvidence are the claim documents an approve or reject decides together.
// The death certificate is settled by the death report review.
var claimEvidence = []document.Type{document.NomineeNID, document.RelationshipProof, document.NomineeBankProof}

func requireClaimDocuments(op ledger.Op, p *participant.Participant) error {
	var pending []string
	for _, t := range document.RequiredTypes(document.GroupNomineeClaim) {
		d, err := op.Document(p, document.GroupNomineeClaim, t)
		if err != nil {
			return err
		}
		if d.Status != document.StatusApproved {
			pending = append(pending, string(t))
		}
	}
	if len(pending) > 0 {
		return pensionerr.New(pensionerr.DocumentsIncomplete, "not approved: "+strings.Join(pending, ", "))
	}
	return nil
}

// settle applies the decision to each document still awaiting review. Slots an
// admin already decided individually are left alone.
func settle(op ledger.Op, p *participant.Participant, approve bool, reason string, types ...document.Type) error {
	for _, t := range types {
		d, err := op.Document(p, document.GroupNomineeClaim, t)
		if err != nil {
			return err
		}
		if d.Status != document.StatusSubmitted {
			continue
		}
		if _, err := op.ReviewDocument(p, document.GroupNomineeClaim, t, approve, reason); err != nil {
			return err
		}
	}
	return nil
}

func submitUnlessApproved(op ledger.Op, p *participant.Participant, t document.Type, ref string) (string, error) {
	d, err := op.Document(p, document.GroupNomineeClaim, t)
	if err != nil {
		return "", err
	}
	if d.Status == document.StatusApproved {
		return d.ContentRef, nil
	}
	d, err = op.SubmitDocument(p, document.GroupNomineeClaim, t, ref)
	if err != nil {
		return "", err
	}
	return d.ContentRef, nil
}
