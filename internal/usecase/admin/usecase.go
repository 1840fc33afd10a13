// Package admin serves the read-only back-office views. Nothing here takes an
// aggregate lock.
package admin

import (
	"context"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/pensionerr"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type Usecase struct {
	run *ledger.Runner
}

func NewUsecase(run *ledger.Runner) *Usecase { return &Usecase{run: run} }

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultLimit
	case n > maxLimit:
		return maxLimit
	}
	return n
}

func (u *Usecase) ListParticipants(ctx context.Context, caller actor.Caller, f participant.ListFilter) ([]participant.Participant, error) {
	if err := ledger.RequireAdmin(caller); err != nil {
		return nil, err
	}
	f.Limit = clampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []participant.Participant
	err := u.run.UoW().WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Participants.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, pensionerr.Wrap(err, pensionerr.Internal, "list participants")
	}
	return out, nil
}

// AuditHistory returns entries oldest first. Participants may read their own
// trail; the full log is admin only.
func (u *Usecase) AuditHistory(ctx context.Context, caller actor.Caller, f audit.Filter) ([]audit.Entry, error) {
	f.Wallet = actor.NormalizeWallet(f.Wallet)
	if !caller.IsAdmin() && (f.Wallet == "" || !caller.Is(f.Wallet)) {
		return nil, pensionerr.New(pensionerr.NotAdmin, "audit history of other participants is admin only")
	}
	f.Limit = clampLimit(f.Limit)
	var out []audit.Entry
	err := u.run.UoW().WithinTx(ctx, func(r uow.Repos) error {
		var err error
		out, err = r.Audit.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, pensionerr.Wrap(err, pensionerr.Internal, "audit history")
	}
	return out, nil
}
