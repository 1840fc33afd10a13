package uow

import (
	"context"

	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
)

type Repos struct {
	Participants participant.Repository
	Documents    document.Repository
	Audit        audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the participant aggregate first, then pass it in. Returns
	// participant.ErrNotFound without calling fn when the wallet is unknown.
	WithinParticipantTx(ctx context.Context, wallet string, fn func(r Repos, p *participant.Participant) error) error
}
