package uowmock

import (
	"context"
	"errors"

	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn            func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinParticipantTxFn func(ctx context.Context, wallet string, fn func(r uow.Repos, p *participant.Participant) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) WithWithinParticipantTx(fn func(context.Context, string, func(uow.Repos, *participant.Participant) error) error) *UoW {
	m.WithinParticipantTxFn = fn
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

// Passthrough builds a UoW that runs every body against repos with no real
// transaction. GetByWalletForUpdate on repos supplies the locked aggregate.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinParticipantTxFn: func(ctx context.Context, wallet string, fn func(uow.Repos, *participant.Participant) error) error {
			p, err := repos.Participants.GetByWalletForUpdate(ctx, wallet)
			if err != nil {
				return err
			}
			return fn(repos, p)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinParticipantTx(ctx context.Context, wallet string, fn func(r uow.Repos, p *participant.Participant) error) error {
	if m.WithinParticipantTxFn != nil {
		return m.WithinParticipantTxFn(ctx, wallet, fn)
	}
	return errUnimplemented
}
