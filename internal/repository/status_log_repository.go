package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type StatusLogRepository struct {
	db *gorm.DB
}

func NewStatusLogRepository(db *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

func (r *StatusLogRepository) WithTx(tx *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: tx}
}

func (r *StatusLogRepository) Append(ctx context.Context, entry *model.StatusLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *StatusLogRepository) ListByEntity(ctx context.Context, kind model.EntityKind, entityID uuid.UUID) ([]model.StatusLog, error) {
	var entries []model.StatusLog
	err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", kind, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
