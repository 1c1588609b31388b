package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) WithTx(tx *gorm.DB) *TripRepository {
	return &TripRepository{db: tx}
}

// GetForUpdate locks the trip row for the duration of the enclosing
// transaction. Transition methods re-check eligibility under this lock so
// two concurrent starts of the same trip cannot both pass.
func (r *TripRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var trip model.Trip
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&trip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip *model.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var trip model.Trip
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver").
		First(&trip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

type TripFilter struct {
	Statuses  []model.TripStatus
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Delayed   *bool
	Limit     int
	Offset    int
}

func (r *TripRepository) List(ctx context.Context, filter TripFilter) ([]model.Trip, error) {
	query := r.db.WithContext(ctx).Model(&model.Trip{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.DateFrom != nil {
		query = query.Where("COALESCE(actual_start, scheduled_start, created_at) >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("COALESCE(actual_start, scheduled_start, created_at) <= ?", *filter.DateTo)
	}
	if filter.Delayed != nil {
		query = query.Where("delayed = ?", *filter.Delayed)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var trips []model.Trip
	err := query.
		Order("created_at DESC").
		Preload("Vehicle").
		Preload("Driver").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateFields applies a partial update to one trip row. Lifecycle services
// call this inside a transaction alongside the ledger slot writes.
func (r *TripRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Trip{}).
		Where("id = ?", id).
		Updates(fields).Error
}
