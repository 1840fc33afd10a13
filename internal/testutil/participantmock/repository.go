package participantmock

import (
	"context"

	domain "pension-ledger/internal/domain/participant"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return context.Canceled; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, p *domain.Participant) error
	SaveFn                 func(ctx context.Context, p *domain.Participant) error
	GetByWalletFn          func(ctx context.Context, wallet string) (*domain.Participant, error)
	GetByWalletForUpdateFn func(ctx context.Context, wallet string) (*domain.Participant, error)
	ListFn                 func(ctx context.Context, f domain.ListFilter) ([]domain.Participant, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Participant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Participant) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByWallet(ctx context.Context, wallet string) (*domain.Participant, error) {
	if m.GetByWalletFn != nil {
		return m.GetByWalletFn(ctx, wallet)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByWalletForUpdate(ctx context.Context, wallet string) (*domain.Participant, error) {
	if m.GetByWalletForUpdateFn != nil {
		return m.GetByWalletForUpdateFn(ctx, wallet)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Participant, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}
