package documentmock

import (
	"context"

	domain "pension-ledger/internal/domain/document"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	UpsertFn            func(ctx context.Context, d *domain.Document) error
	GetFn               func(ctx context.Context, participantID uint64, g domain.Group, t domain.Type) (*domain.Document, error)
	ListByParticipantFn func(ctx context.Context, participantID uint64, g domain.Group) ([]domain.Document, error)
}

func (m *Repo) Upsert(ctx context.Context, d *domain.Document) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, d)
	}
	return nil
}

// Get reports every slot as never submitted unless GetFn is set.
func (m *Repo) Get(ctx context.Context, participantID uint64, g domain.Group, t domain.Type) (*domain.Document, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, participantID, g, t)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByParticipant(ctx context.Context, participantID uint64, g domain.Group) ([]domain.Document, error) {
	if m.ListByParticipantFn != nil {
		return m.ListByParticipantFn(ctx, participantID, g)
	}
	return nil, nil
}
