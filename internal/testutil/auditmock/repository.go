package auditmock

import (
	"context"
	"sync"

	domain "pension-ledger/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo keeps appended entries in memory unless AppendFn overrides it.
type Repo struct {
	AppendFn func(ctx context.Context, e *domain.Entry) error
	ListFn   func(ctx context.Context, f domain.Filter) ([]domain.Entry, error)

	mu      sync.Mutex
	Entries []domain.Entry
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.mu.Lock()
	m.Entries = append(m.Entries, *e)
	m.mu.Unlock()
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Entry, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Entry(nil), m.Entries...), nil
}
