package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleBrief struct {
	ID          uuid.UUID           `json:"id"`
	PlateNumber string              `json:"plate_number"`
	Brand       string              `json:"brand"`
	Model       string              `json:"model"`
	Availability VehicleAvailability `json:"availability"`
}

type DriverBrief struct {
	ID           uuid.UUID          `json:"id"`
	FullName     string             `json:"full_name"`
	Phone        string             `json:"phone"`
	Availability DriverAvailability `json:"availability"`
}

// TripRecord is the list/detail row shape: the trip plus brief views of its
// vehicle and driver when preloaded.
type TripRecord struct {
	Trip
	VehicleBrief *VehicleBrief `json:"vehicle_brief,omitempty"`
	DriverBrief  *DriverBrief  `json:"driver_brief,omitempty"`
}

// MaintenanceRecordView carries the derived overdue label alongside the
// stored status.
type MaintenanceRecordView struct {
	Maintenance
	Overdue bool `json:"overdue"`
}

func NewTripRecord(t Trip) TripRecord {
	record := TripRecord{Trip: t}
	if t.Vehicle != nil {
		record.VehicleBrief = &VehicleBrief{
			ID:          t.Vehicle.ID,
			PlateNumber: t.Vehicle.PlateNumber,
			Brand:       t.Vehicle.Brand,
			Model:       t.Vehicle.Model,
			Availability: t.Vehicle.Availability,
		}
	}
	if t.Driver != nil {
		record.DriverBrief = &DriverBrief{
			ID:           t.Driver.ID,
			FullName:     t.Driver.FullName,
			Phone:        t.Driver.Phone,
			Availability: t.Driver.Availability,
		}
	}
	return record
}

func NewMaintenanceView(m Maintenance, now time.Time) MaintenanceRecordView {
	return MaintenanceRecordView{Maintenance: m, Overdue: m.Overdue(now)}
}
