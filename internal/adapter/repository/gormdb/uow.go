package gormdb

import (
	"context"

	"gorm.io/gorm"

	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Participants: &ParticipantRepository{db: tx},
		Documents:    &DocumentRepository{db: tx},
		Audit:        &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinParticipantTx(ctx context.Context, wallet string, fn func(r uow.Repos, p *participant.Participant) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the aggregate row up-front to prevent lost updates
		p, err := r.Participants.GetByWalletForUpdate(ctx, wallet)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}

// Models lists every table the ledger owns, for migrations.
func Models() []any {
	return []any{&participant.Participant{}, &document.Document{}, &audit.Entry{}}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
