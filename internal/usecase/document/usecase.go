package document

import (
	"context"

	"pension-ledger/internal/domain/actor"
	domain "pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/pensionerr"
)

type Usecase struct {
	run *ledger.Runner
}

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

// submissionOpen decides whether caller may upload into group g right now.
func submissionOpen(caller actor.Caller, p *participant.Participant, g domain.Group) error {
	if !g.Valid() {
		return pensionerr.Newf(pensionerr.DocumentNotFound, "unknown document group %q", g)
	}
	if err := ledger.RequireOpen(p); err != nil {
		return err
	}

	if g == domain.GroupNomineeClaim {
		if err := ledger.RequireNominee(caller, p); err != nil {
			return err
		}
		switch p.Death.Status {
		case participant.DeathReported, participant.DeathVerified:
		default:
			return pensionerr.New(pensionerr.NoDeathReport, "no death report on file")
		}
		if p.Claim.Status == participant.ClaimApproved {
			return pensionerr.New(pensionerr.ClaimAlreadyApproved, "claim already approved")
		}
		return nil
	}

	if err := ledger.First(ledger.RequireSelf(caller, p), ledger.RequireAlive(p)); err != nil {
		return err
	}
	if g != domain.PensionerGroup(p.Program) {
		return pensionerr.Newf(pensionerr.ProgramMismatch, "%s documents do not apply to %s participants", g, p.Program)
	}
	switch p.ApplicationStatus {
	case participant.ApplicationPending, participant.ApplicationRejected:
		return nil
	}
	return pensionerr.New(pensionerr.SubmissionClosed, "application is "+string(p.ApplicationStatus))
}

func (u *Usecase) Submit(ctx context.Context, caller actor.Caller, wallet string, g domain.Group, t domain.Type, ref string) (*domain.Document, error) {
	var out *domain.Document
	_, err := u.run.Mutate(ctx, "submit_document", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := submissionOpen(caller, p, g); err != nil {
			return err
		}
		d, err := op.SubmitDocument(p, g, t, ref)
		out = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitBatch stores every item or none of them.
func (u *Usecase) SubmitBatch(ctx context.Context, caller actor.Caller, wallet string, g domain.Group, items []Submission) ([]domain.Document, error) {
	var out []domain.Document
	_, err := u.run.Mutate(ctx, "submit_documents", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if len(items) == 0 {
			return pensionerr.New(pensionerr.MissingRequiredField, "documents")
		}
		if err := submissionOpen(caller, p, g); err != nil {
			return err
		}
		seen := make(map[domain.Type]bool, len(items))
		for _, it := range items {
			if seen[it.Type] {
				return pensionerr.Newf(pensionerr.DuplicateDocument, "%s appears twice", it.Type)
			}
			seen[it.Type] = true
			d, err := op.SubmitDocument(p, g, it.Type, it.ContentRef)
			if err != nil {
				return err
			}
			out = append(out, *d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func reviewOpen(caller actor.Caller, p *participant.Participant, g domain.Group) error {
	if !g.Valid() {
		return pensionerr.Newf(pensionerr.DocumentNotFound, "unknown document group %q", g)
	}
	return ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p))
}

func (u *Usecase) Review(ctx context.Context, caller actor.Caller, wallet string, g domain.Group, t domain.Type, approve bool, reason string) (*domain.Document, error) {
	var out *domain.Document
	_, err := u.run.Mutate(ctx, "review_document", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := reviewOpen(caller, p, g); err != nil {
			return err
		}
		d, err := op.ReviewDocument(p, g, t, approve, reason)
		out = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewBatch applies every decision or none of them.
func (u *Usecase) ReviewBatch(ctx context.Context, caller actor.Caller, wallet string, g domain.Group, decisions []Decision) ([]domain.Document, error) {
	var out []domain.Document
	_, err := u.run.Mutate(ctx, "review_documents", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := reviewOpen(caller, p, g); err != nil {
			return err
		}
		var err error
		out, err = applyDecisions(op, p, g, decisions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func applyDecisions(op ledger.Op, p *participant.Participant, g domain.Group, decisions []Decision) ([]domain.Document, error) {
	if len(decisions) == 0 {
		return nil, pensionerr.New(pensionerr.MissingRequiredField, "decisions")
	}
	seen := make(map[domain.Type]bool, len(decisions))
	out := make([]domain.Document, 0, len(decisions))
	for _, dec := range decisions {
		if seen[dec.Type] {
			return nil, pensionerr.Newf(pensionerr.DuplicateDocument, "%s appears twice", dec.Type)
		}
		seen[dec.Type] = true
		d, err := op.ReviewDocument(p, g, dec.Type, dec.Approve, dec.Reason)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// ApproveAllSubmitted approves every document of g currently awaiting review.
// It fails with DocumentNotSubmitted when nothing is waiting.
func (u *Usecase) ApproveAllSubmitted(ctx context.Context, caller actor.Caller, wallet string, g domain.Group) ([]domain.Document, error) {
	var out []domain.Document
	_, err := u.run.Mutate(ctx, "approve_all_documents", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := reviewOpen(caller, p, g); err != nil {
			return err
		}
		docs, err := op.Repos.Documents.ListByParticipant(op.Ctx, p.ID, g)
		if err != nil {
			return pensionerr.Wrap(err, pensionerr.Internal, "list documents")
		}
		var decisions []Decision
		for _, d := range docs {
			if d.Status == domain.StatusSubmitted {
				decisions = append(decisions, Decision{Type: d.Type, Approve: true})
			}
		}
		if len(decisions) == 0 {
			return pensionerr.New(pensionerr.DocumentNotSubmitted, "nothing awaiting review")
		}
		out, err = applyDecisions(op, p, g, decisions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the whole required set of g in display order; slots with no
// upload come back as Missing.
func (u *Usecase) List(ctx context.Context, caller actor.Caller, wallet string, g domain.Group) ([]domain.Document, error) {
	if !g.Valid() {
		return nil, pensionerr.Newf(pensionerr.DocumentNotFound, "unknown document group %q", g)
	}
	var out []domain.Document
	err := u.run.UoW().WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Participants.GetByWallet(ctx, actor.NormalizeWallet(wallet))
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && !caller.Is(p.Wallet) && !caller.Is(p.Nominee.Wallet) {
			return pensionerr.New(pensionerr.NotParticipant, "not allowed to view these documents")
		}
		docs, err := r.Documents.ListByParticipant(ctx, p.ID, g)
		if err != nil {
			return err
		}
		byType := make(map[domain.Type]domain.Document, len(docs))
		for _, d := range docs {
			byType[d.Type] = d
		}
		for _, t := range domain.RequiredTypes(g) {
			if d, ok := byType[t]; ok {
				out = append(out, d)
				continue
			}
			out = append(out, *domain.Missing(p.ID, g, t))
		}
		return nil
	})
	if err != nil {
		return nil, ledger.Classify(err)
	}
	return out, nil
}
