package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusRepair      VehicleStatus = "repair"
	VehicleStatusRetired     VehicleStatus = "retired"
	VehicleStatusSold        VehicleStatus = "sold"
)

type VehicleAvailability string

const (
	VehicleAvailable        VehicleAvailability = "available"
	VehicleInUse            VehicleAvailability = "in-use"
	VehicleInMaintenance    VehicleAvailability = "maintenance"
	VehicleOutOfService     VehicleAvailability = "out-of-service"
)

// Vehicle availability is owned by the ledger: it changes only through
// trip/maintenance transitions, never by direct field edits.
type Vehicle struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PlateNumber string              `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate_number"`
	VIN         string              `gorm:"type:varchar(64)" json:"vin"`
	Brand       string              `gorm:"type:varchar(64)" json:"brand"`
	Model       string              `gorm:"type:varchar(64)" json:"model"`
	Year        int                 `json:"year"`
	Status      VehicleStatus       `gorm:"type:vehicle_status;not null;default:'active'" json:"status"`
	Availability VehicleAvailability `gorm:"type:vehicle_availability;not null;default:'available'" json:"availability"`

	// Long-term assignment; a relation, not an ownership claim.
	AssignedDriverID *uuid.UUID `gorm:"type:uuid" json:"assigned_driver_id,omitempty"`

	// Claim slot backing the availability ledger. Mutated only through
	// lifecycle transitions.
	ClaimKind string     `gorm:"type:varchar(16);not null;default:'none'" json:"claim_kind"`
	ClaimID   *uuid.UUID `gorm:"type:uuid" json:"claim_id,omitempty"`

	OdometerKm int64 `gorm:"not null;default:0" json:"odometer_km"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
