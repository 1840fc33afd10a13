package document

import "context"

type Repository interface {
	// Upsert inserts a new slot (ID == 0) or updates an existing one.
	Upsert(ctx context.Context, d *Document) error

	// Get returns ErrNotFound when the slot has never been submitted.
	Get(ctx context.Context, participantID uint64, g Group, t Type) (*Document, error)

	ListByParticipant(ctx context.Context, participantID uint64, g Group) ([]Document, error)
}
