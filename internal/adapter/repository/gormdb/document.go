package gormdb

import (
	"context"

	"gorm.io/gorm"

	"pension-ledger/internal/domain/document"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Upsert(ctx context.Context, d *document.Document) error {
	if d.ID == 0 {
		return r.db.WithContext(ctx).Create(d).Error
	}
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DocumentRepository) Get(ctx context.Context, participantID uint64, g document.Group, t document.Type) (*document.Document, error) {
	var out document.Document
	res := r.db.WithContext(ctx).
		Where("participant_id = ? AND doc_group = ? AND doc_type = ?", participantID, g, t).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error, document.ErrNotFound)
	}
	return &out, nil
}

func (r *DocumentRepository) ListByParticipant(ctx context.Context, participantID uint64, g document.Group) ([]document.Document, error) {
	var out []document.Document
	res := r.db.WithContext(ctx).
		Where("participant_id = ? AND doc_group = ?", participantID, g).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
