package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/authz"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// FleetService handles vehicle and driver records: creation, listing and
// plain field updates. Availability and claim slots belong to the ledger
// and are rejected here.
type FleetService struct {
	vehicles *repository.VehicleRepository
	drivers  *repository.DriverRepository
}

func NewFleetService(vehicles *repository.VehicleRepository, drivers *repository.DriverRepository) *FleetService {
	return &FleetService{vehicles: vehicles, drivers: drivers}
}

type CreateVehicleInput struct {
	PlateNumber string
	VIN         string
	Brand       string
	Model       string
	Year        int
	OdometerKm  int64
}

func (s *FleetService) CreateVehicle(ctx context.Context, principal model.Principal, input CreateVehicleInput) (*model.Vehicle, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionCreate, authz.Resource{Kind: model.EntityVehicle})); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.PlateNumber) == "" {
		return nil, ErrValidationFailed
	}

	vehicle := &model.Vehicle{
		PlateNumber:  strings.ToUpper(strings.TrimSpace(input.PlateNumber)),
		VIN:          strings.TrimSpace(input.VIN),
		Brand:        strings.TrimSpace(input.Brand),
		Model:        strings.TrimSpace(input.Model),
		Year:         input.Year,
		Status:       model.VehicleStatusActive,
		Availability: model.VehicleAvailable,
		ClaimKind:    "none",
		OdometerKm:   input.OdometerKm,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *FleetService) GetVehicle(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Vehicle, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityVehicle})); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return vehicle, nil
}

func (s *FleetService) ListVehicles(ctx context.Context, principal model.Principal, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityVehicle})); err != nil {
		return nil, err
	}
	return s.vehicles.List(ctx, filter)
}

// vehicleEditable is the set of columns a plain update may touch.
// Availability and claim columns are ledger-owned; status changes for
// maintenance flow through MaintenanceService.
var vehicleEditable = map[string]bool{
	"plate_number": true,
	"vin":          true,
	"brand":        true,
	"model":        true,
	"year":         true,
	"status":       true,
	"odometer_km":  true,
}

func (s *FleetService) UpdateVehicle(ctx context.Context, principal model.Principal, id uuid.UUID, fields map[string]interface{}) (*model.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	names := fieldNames(fields)
	if err := fromAuthz(authz.AuthorizeFieldUpdate(principal, authz.Resource{
		Kind:             model.EntityVehicle,
		AssigneeDriverID: vehicle.AssignedDriverID,
	}, names)); err != nil {
		return nil, err
	}
	for _, name := range names {
		if !vehicleEditable[name] {
			return nil, ErrValidationFailed
		}
	}
	if raw, ok := fields["status"]; ok {
		status, ok := raw.(string)
		if !ok || !validVehicleStatus(model.VehicleStatus(status)) {
			return nil, ErrValidationFailed
		}
	}

	if err := s.vehicles.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AssignDriver sets or clears the long-term driver assignment on a vehicle.
// This is a relation, not an availability claim.
func (s *FleetService) AssignDriver(ctx context.Context, principal model.Principal, vehicleID uuid.UUID, driverID *uuid.UUID) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionUpdate, authz.Resource{Kind: model.EntityVehicle})); err != nil {
		return err
	}
	if principal.IsDriver() {
		return ErrAccessDenied
	}
	if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
		return orNotFound(err)
	}
	if driverID != nil {
		if _, err := s.drivers.GetByID(ctx, *driverID); err != nil {
			return orNotFound(err)
		}
	}
	return s.vehicles.AssignDriver(ctx, vehicleID, driverID)
}

type CreateDriverInput struct {
	FullName         string
	Phone            string
	EmergencyContact string
	LicenseNumber    string
	LicenseExpiry    *time.Time
	Salary           int64
}

func (s *FleetService) CreateDriver(ctx context.Context, principal model.Principal, input CreateDriverInput) (*model.Driver, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionCreate, authz.Resource{Kind: model.EntityDriver})); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.LicenseNumber) == "" {
		return nil, ErrValidationFailed
	}

	driver := &model.Driver{
		FullName:         strings.TrimSpace(input.FullName),
		Phone:            strings.TrimSpace(input.Phone),
		EmergencyContact: strings.TrimSpace(input.EmergencyContact),
		LicenseNumber:    strings.TrimSpace(input.LicenseNumber),
		LicenseExpiry:    input.LicenseExpiry,
		Status:           model.DriverStatusActive,
		Availability:     model.DriverAvailable,
		ClaimKind:        "none",
		Salary:           input.Salary,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *FleetService) GetDriver(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Driver, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityDriver})); err != nil {
		return nil, err
	}
	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return driver, nil
}

func (s *FleetService) ListDrivers(ctx context.Context, principal model.Principal, filter repository.DriverFilter) ([]model.Driver, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityDriver})); err != nil {
		return nil, err
	}
	return s.drivers.List(ctx, filter)
}

// driverEditable mirrors vehicleEditable for driver records. The field-level
// allow-list for drivers editing their own profile lives in authz; this set
// bounds what any caller may touch through a plain update.
var driverEditable = map[string]bool{
	"full_name":         true,
	"phone":             true,
	"emergency_contact": true,
	"license_number":    true,
	"license_expiry":    true,
	"status":            true,
	"salary":            true,
}

// UpdateDriver applies a field-gated update. Admins and dispatchers may set
// any editable column; a driver updating their own record is limited to the
// profile allow-list, so salary or status edits fail with ErrAccessDenied
// even on own records.
func (s *FleetService) UpdateDriver(ctx context.Context, principal model.Principal, id uuid.UUID, fields map[string]interface{}) (*model.Driver, error) {
	if _, err := s.drivers.GetByID(ctx, id); err != nil {
		return nil, orNotFound(err)
	}

	names := fieldNames(fields)
	if err := fromAuthz(authz.AuthorizeFieldUpdate(principal, authz.Resource{
		Kind:             model.EntityDriver,
		AssigneeDriverID: &id,
	}, names)); err != nil {
		return nil, err
	}
	for _, name := range names {
		if !driverEditable[name] {
			return nil, ErrValidationFailed
		}
	}
	if raw, ok := fields["status"]; ok {
		status, ok := raw.(string)
		if !ok || !validDriverStatus(model.DriverStatus(status)) {
			return nil, ErrValidationFailed
		}
	}

	if err := s.drivers.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}

func validVehicleStatus(s model.VehicleStatus) bool {
	switch s {
	case model.VehicleStatusActive, model.VehicleStatusInactive, model.VehicleStatusMaintenance,
		model.VehicleStatusRepair, model.VehicleStatusRetired, model.VehicleStatusSold:
		return true
	}
	return false
}

func validDriverStatus(s model.DriverStatus) bool {
	switch s {
	case model.DriverStatusActive, model.DriverStatusInactive, model.DriverStatusSuspended,
		model.DriverStatusTerminated, model.DriverStatusOnLeave:
		return true
	}
	return false
}
