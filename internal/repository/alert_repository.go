package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) WithTx(tx *gorm.DB) *AlertRepository {
	return &AlertRepository{db: tx}
}

func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var alert model.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

type AlertFilter struct {
	Statuses   []model.AlertStatus
	Types      []model.AlertType
	Severities []model.AlertSeverity
	VehicleID  *uuid.UUID
	DriverID   *uuid.UUID
	TripID     *uuid.UUID
	Limit      int
	Offset     int
}

func (r *AlertRepository) List(ctx context.Context, filter AlertFilter) ([]model.Alert, error) {
	query := r.db.WithContext(ctx).Model(&model.Alert{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if len(filter.Severities) > 0 {
		query = query.Where("severity IN ?", filter.Severities)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.TripID != nil {
		query = query.Where("trip_id = ?", *filter.TripID)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var alerts []model.Alert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *AlertRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateGuarded applies fields only if the alert is still in one of the
// expected statuses, returning the number of rows touched. Zero rows means
// the alert moved on concurrently.
func (r *AlertRepository) UpdateGuarded(ctx context.Context, id uuid.UUID, expected []model.AlertStatus, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// ListExpiryDue returns alerts whose expiry policy should fire at now.
func (r *AlertRepository) ListExpiryDue(ctx context.Context, now time.Time) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Where("status IN ?", []model.AlertStatus{model.AlertStatusActive, model.AlertStatusAcknowledged}).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
