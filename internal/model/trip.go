package model

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripStatusPlanned    TripStatus = "planned"
	TripStatusAssigned   TripStatus = "assigned"
	TripStatusInProgress TripStatus = "in-progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// tripTransitions is the allowed transition graph. Terminal states have no
// outgoing edges. "delayed" is deliberately absent: it is an advisory flag
// on the trip (Delayed + DelayReason), not a primary status.
var tripTransitions = map[TripStatus][]TripStatus{
	TripStatusPlanned:    {TripStatusAssigned, TripStatusInProgress, TripStatusCancelled},
	TripStatusAssigned:   {TripStatusInProgress, TripStatusCancelled},
	TripStatusInProgress: {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:  {},
	TripStatusCancelled:  {},
}

func (s TripStatus) CanTransitionTo(to TripStatus) bool {
	for _, allowed := range tripTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s TripStatus) Terminal() bool {
	return len(tripTransitions[s]) == 0
}

// Trip holds exclusive references to one vehicle and one driver for its
// active lifetime (claimed at start, released at complete/cancel).
type Trip struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID uuid.UUID `gorm:"type:uuid;not null" json:"vehicle_id"`
	DriverID uuid.UUID  `gorm:"type:uuid;not null" json:"driver_id"`
	Status   TripStatus `gorm:"type:trip_status;not null;default:'planned'" json:"status"`

	OriginAddress      string `gorm:"type:text" json:"origin_address"`
	DestinationAddress string `gorm:"type:text" json:"destination_address"`
	CargoDescription   string `gorm:"type:text" json:"cargo_description"`

	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`

	OdometerStart *int64   `json:"odometer_start,omitempty"`
	OdometerEnd   *int64   `json:"odometer_end,omitempty"`
	FuelStart     *float64 `json:"fuel_start,omitempty"`
	FuelEnd       *float64 `json:"fuel_end,omitempty"`

	Delayed     bool   `gorm:"not null;default:false" json:"delayed"`
	DelayReason string `gorm:"type:text" json:"delay_reason,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Driver  *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}
