package participant

import "context"

type ListFilter struct {
	Program           Program
	ApplicationStatus ApplicationStatus
	AccountStatus     AccountStatus
	Limit             int
	Offset            int
}

type Repository interface {
	Create(ctx context.Context, p *Participant) error
	Save(ctx context.Context, p *Participant) error

	// GetByWallet returns ErrNotFound when no participant is registered for wallet.
	GetByWallet(ctx context.Context, wallet string) (*Participant, error)
	// GetByWalletForUpdate locks the row until the surrounding tx ends.
	GetByWalletForUpdate(ctx context.Context, wallet string) (*Participant, error)

	// List is a point-in-time read; it takes no locks.
	List(ctx context.Context, f ListFilter) ([]Participant, error)
}
