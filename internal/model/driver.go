package model

import (
	"time"

	"github.com/google/uuid"
)

type DriverStatus string

const (
	DriverStatusActive     DriverStatus = "active"
	DriverStatusInactive   DriverStatus = "inactive"
	DriverStatusSuspended  DriverStatus = "suspended"
	DriverStatusTerminated DriverStatus = "terminated"
	DriverStatusOnLeave    DriverStatus = "on-leave"
)

type DriverAvailability string

const (
	DriverAvailable   DriverAvailability = "available"
	DriverOnDuty      DriverAvailability = "on-duty"
	DriverOffDuty     DriverAvailability = "off-duty"
	DriverOnBreak     DriverAvailability = "on-break"
	DriverUnavailable DriverAvailability = "unavailable"
)

type Driver struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName         string             `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone            string             `gorm:"type:varchar(32)" json:"phone"`
	EmergencyContact string             `gorm:"type:varchar(255)" json:"emergency_contact"`
	LicenseNumber    string             `gorm:"type:varchar(64);not null" json:"license_number"`
	LicenseExpiry    *time.Time         `json:"license_expiry,omitempty"`
	Status           DriverStatus       `gorm:"type:driver_status;not null;default:'active'" json:"status"`
	Availability     DriverAvailability `gorm:"type:driver_availability;not null;default:'available'" json:"availability"`

	// Monthly salary in the smallest currency unit. Restricted field:
	// drivers cannot edit it even on their own record.
	Salary int64 `gorm:"not null;default:0" json:"salary"`

	// Claim slot backing the availability ledger.
	ClaimKind string     `gorm:"type:varchar(16);not null;default:'none'" json:"claim_kind"`
	ClaimID   *uuid.UUID `gorm:"type:uuid" json:"claim_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}
