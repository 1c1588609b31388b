package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) WithTx(tx *gorm.DB) *DriverRepository {
	return &DriverRepository{db: tx}
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	if err := r.db.WithContext(ctx).First(&driver, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

type DriverFilter struct {
	Statuses       []model.DriverStatus
	Availabilities []model.DriverAvailability
	Limit          int
	Offset         int
}

func (r *DriverRepository) List(ctx context.Context, filter DriverFilter) ([]model.Driver, error) {
	query := r.db.WithContext(ctx).Model(&model.Driver{})

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

	var drivers []model.Driver
	if err := query.Order("full_name ASC").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *DriverRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("id = ?", id).
		Updates(fields).Error
}
