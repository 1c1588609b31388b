package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) WithTx(tx *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: tx}
}

func (r *MaintenanceRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Maintenance, error) {
	var record model.Maintenance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MaintenanceRepository) Create(ctx context.Context, record *model.Maintenance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Maintenance, error) {
	var record model.Maintenance
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Approvals").
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type MaintenanceFilter struct {
	Statuses  []model.MaintenanceStatus
	Types     []model.MaintenanceType
	VehicleID *uuid.UUID
	// OverdueOnly narrows to records still scheduled past their date.
	OverdueOnly bool
	Now         time.Time
	Limit       int
	Offset      int
}

func (r *MaintenanceRepository) List(ctx context.Context, filter MaintenanceFilter) ([]model.Maintenance, error) {
	query := r.db.WithContext(ctx).Model(&model.Maintenance{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.OverdueOnly {
		query = query.Where("status = ? AND scheduled_date < ?", model.MaintenanceStatusScheduled, filter.Now)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var records []model.Maintenance
	err := query.
		Order("scheduled_date DESC").
		Preload("Vehicle").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *MaintenanceRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *MaintenanceRepository) AddApproval(ctx context.Context, approval *model.MaintenanceApproval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}
