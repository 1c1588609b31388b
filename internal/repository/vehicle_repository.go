package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// WithTx returns a copy scoped to the given transaction.
func (r *VehicleRepository) WithTx(tx *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: tx}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

type VehicleFilter struct {
	Statuses       []model.VehicleStatus
	Availabilities []model.VehicleAvailability
	Limit          int
	Offset         int
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&model.Vehicle{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Availabilities) > 0 {
		query = query.Where("availability IN ?", filter.Availabilities)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var vehicles []model.Vehicle
	if err := query.Order("plate_number ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *VehicleRepository) AssignDriver(ctx context.Context, vehicleID uuid.UUID, driverID *uuid.UUID) error {
	value := interface{}(driverID)
	if driverID == nil {
		value = gorm.Expr("NULL")
	}
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("assigned_driver_id", value).Error
}
