package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pension-ledger/internal/domain/participant"
)

type ParticipantRepository struct{ db *gorm.DB }

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return participant.ErrDuplicate
	}
	return err
}

func (r *ParticipantRepository) Save(ctx context.Context, p *participant.Participant) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ParticipantRepository) GetByWallet(ctx context.Context, wallet string) (*participant.Participant, error) {
	var out participant.Participant
	res := r.db.WithContext(ctx).Where("wallet = ?", wallet).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, participant.ErrNotFound)
	}
	return &out, nil
}

// GetByWalletForUpdate issues SELECT ... FOR UPDATE. Dialects without row locks
// (sqlite) drop the clause and rely on the database-level write lock.
func (r *ParticipantRepository) GetByWalletForUpdate(ctx context.Context, wallet string) (*participant.Participant, error) {
	var out participant.Participant
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet = ?", wallet).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, participant.ErrNotFound)
	}
	return &out, nil
}

func (r *ParticipantRepository) List(ctx context.Context, f participant.ListFilter) ([]participant.Participant, error) {
	q := r.db.WithContext(ctx).Model(&participant.Participant{})
	if f.Program != "" {
		q = q.Where("program = ?", f.Program)
	}
	if f.ApplicationStatus != "" {
		q = q.Where("application_status = ?", f.ApplicationStatus)
	}
	if f.AccountStatus != "" {
		q = q.Where("account_status = ?", f.AccountStatus)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []participant.Participant
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
