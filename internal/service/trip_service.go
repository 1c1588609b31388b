package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/authz"
	"fleet-service/internal/ledger"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// TripService drives the trip state machine. Every transition runs in one
// transaction covering the trip row, the claim slots, and the audit log;
// the ledger serializes the claim decision per resource.
type TripService struct {
	db        *gorm.DB
	trips     *repository.TripRepository
	vehicles  *repository.VehicleRepository
	drivers   *repository.DriverRepository
	statusLog *repository.StatusLogRepository
	ledger    *ledger.Ledger

	now func() time.Time
}

func NewTripService(
	db *gorm.DB,
	trips *repository.TripRepository,
	vehicles *repository.VehicleRepository,
	drivers *repository.DriverRepository,
	statusLog *repository.StatusLogRepository,
	ldg *ledger.Ledger,
) *TripService {
	return &TripService{
		db:        db,
		trips:     trips,
		vehicles:  vehicles,
		drivers:   drivers,
		statusLog: statusLog,
		ledger:    ldg,
		now:       time.Now,
	}
}

type CreateTripInput struct {
	VehicleID          uuid.UUID
	DriverID           uuid.UUID
	OriginAddress      string
	DestinationAddress string
	CargoDescription   string
	ScheduledStart     *time.Time
	ScheduledEnd       *time.Time
}

// Create validates that both resources look free at creation time. The
// check is advisory: the binding claim happens at Start.
func (s *TripService) Create(ctx context.Context, principal model.Principal, input CreateTripInput) (*model.TripRecord, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionCreate, authz.Resource{Kind: model.EntityTrip})); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, orNotFound(err)
	}
	driver, err := s.drivers.GetByID(ctx, input.DriverID)
	if err != nil {
		return nil, orNotFound(err)
	}

	if vehicle.Status != model.VehicleStatusActive || vehicle.Availability != model.VehicleAvailable {
		return nil, ErrResourceUnavailable
	}
	if driver.Status != model.DriverStatusActive || driver.Availability != model.DriverAvailable {
		return nil, ErrResourceUnavailable
	}

	trip := &model.Trip{
		VehicleID:          input.VehicleID,
		DriverID:           input.DriverID,
		Status:             model.TripStatusPlanned,
		OriginAddress:      strings.TrimSpace(input.OriginAddress),
		DestinationAddress: strings.TrimSpace(input.DestinationAddress),
		CargoDescription:   strings.TrimSpace(input.CargoDescription),
		ScheduledStart:     input.ScheduledStart,
		ScheduledEnd:       input.ScheduledEnd,
		CreatedBy:          principal.ActorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.trips.WithTx(tx).Create(ctx, trip); err != nil {
			return err
		}
		return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
			EntityKind: model.EntityTrip,
			EntityID:   trip.ID,
			NewStatus:  string(model.TripStatusPlanned),
			ChangedBy:  &principal.ActorID,
		})
	})
	if err != nil {
		return nil, err
	}

	created, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	record := model.NewTripRecord(*created)
	return &record, nil
}

// Assign moves a planned trip to assigned. No ledger interaction: the
// binding claim stays at Start.
func (s *TripService) Assign(ctx context.Context, principal model.Principal, tripID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return orNotFound(err)
	}
	if err := s.authorizeTransition(principal, trip); err != nil {
		return err
	}

	return s.transition(ctx, principal, tripID, model.TripStatusAssigned, "", nil)
}

// Start claims the vehicle and the driver as one unit and begins the trip.
// Exactly one of two concurrent starts for the same vehicle can succeed;
// the loser gets ErrResourceUnavailable.
func (s *TripService) Start(ctx context.Context, principal model.Principal, tripID uuid.UUID, odometerStart int64, fuelStart float64) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return orNotFound(err)
	}
	if err := s.authorizeTransition(principal, trip); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check under the row lock: a concurrent start already moved
		// the trip on.
		current, err := s.trips.WithTx(tx).GetForUpdate(ctx, tripID)
		if err != nil {
			return orNotFound(err)
		}
		if !current.Status.CanTransitionTo(model.TripStatusInProgress) {
			return ErrInvalidTransition
		}

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderTrip, ID: tripID}
		err = s.ledger.Claim(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
			ledger.Resource{Kind: ledger.KindDriver, ID: current.DriverID},
		)
		if err != nil {
			if errors.Is(err, ledger.ErrClaimed) {
				return ErrResourceUnavailable
			}
			return orNotFound(err)
		}

		if err := s.trips.WithTx(tx).UpdateFields(ctx, tripID, map[string]interface{}{
			"status":         model.TripStatusInProgress,
			"actual_start":   now,
			"odometer_start": odometerStart,
			"fuel_start":     fuelStart,
		}); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, tripID, current.Status, model.TripStatusInProgress, "", &principal.ActorID)
	})
}

// Complete releases both claims and closes the trip.
func (s *TripService) Complete(ctx context.Context, principal model.Principal, tripID uuid.UUID, odometerEnd int64, fuelEnd float64, completionDetails string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return orNotFound(err)
	}
	if err := s.authorizeTransition(principal, trip); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.trips.WithTx(tx).GetForUpdate(ctx, tripID)
		if err != nil {
			return orNotFound(err)
		}
		if current.Status != model.TripStatusInProgress {
			return ErrInvalidTransition
		}

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderTrip, ID: tripID}
		err = s.ledger.Release(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
			ledger.Resource{Kind: ledger.KindDriver, ID: current.DriverID},
		)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":       model.TripStatusCompleted,
			"actual_end":   now,
			"odometer_end": odometerEnd,
			"fuel_end":     fuelEnd,
		}
		if details := strings.TrimSpace(completionDetails); details != "" {
			updates["notes"] = appendNote(current.Notes, details)
		}
		if err := s.trips.WithTx(tx).UpdateFields(ctx, tripID, updates); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, tripID, current.Status, model.TripStatusCompleted, completionDetails, &principal.ActorID)
	})
}

// Cancel is allowed from any non-terminal status. Claims held by this trip
// are released; releasing unclaimed slots is a no-op, so cancelling a trip
// that never started does not disturb the ledger.
func (s *TripService) Cancel(ctx context.Context, principal model.Principal, tripID uuid.UUID, reason string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return orNotFound(err)
	}
	if err := s.authorizeTransition(principal, trip); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.trips.WithTx(tx).GetForUpdate(ctx, tripID)
		if err != nil {
			return orNotFound(err)
		}
		if current.Status.Terminal() {
			return ErrInvalidTransition
		}

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderTrip, ID: tripID}
		err = s.ledger.Release(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
			ledger.Resource{Kind: ledger.KindDriver, ID: current.DriverID},
		)
		if err != nil {
			return err
		}

		if err := s.trips.WithTx(tx).UpdateFields(ctx, tripID, map[string]interface{}{
			"status": model.TripStatusCancelled,
			"notes":  appendNote(current.Notes, "cancelled: "+strings.TrimSpace(reason)),
		}); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, tripID, current.Status, model.TripStatusCancelled, reason, &principal.ActorID)
	})
}

// MarkDelayed flips the advisory delay flag. It never drives the ledger
// and leaves the primary status untouched.
func (s *TripService) MarkDelayed(ctx context.Context, principal model.Principal, tripID uuid.UUID, reason string) error {
	return s.setDelayFlag(ctx, principal, tripID, true, reason)
}

func (s *TripService) ClearDelay(ctx context.Context, principal model.Principal, tripID uuid.UUID) error {
	return s.setDelayFlag(ctx, principal, tripID, false, "")
}

func (s *TripService) setDelayFlag(ctx context.Context, principal model.Principal, tripID uuid.UUID, delayed bool, reason string) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return orNotFound(err)
	}
	if err := s.authorizeTransition(principal, trip); err != nil {
		return err
	}
	if trip.Status != model.TripStatusAssigned && trip.Status != model.TripStatusInProgress {
		return ErrInvalidTransition
	}
	return s.trips.UpdateFields(ctx, tripID, map[string]interface{}{
		"delayed":      delayed,
		"delay_reason": strings.TrimSpace(reason),
	})
}

func (s *TripService) Get(ctx context.Context, principal model.Principal, tripID uuid.UUID) (*model.TripRecord, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityTrip})); err != nil {
		return nil, err
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, orNotFound(err)
	}
	record := model.NewTripRecord(*trip)
	return &record, nil
}

// History returns the status audit trail for a trip, oldest first.
func (s *TripService) History(ctx context.Context, principal model.Principal, tripID uuid.UUID) ([]model.StatusLog, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityTrip})); err != nil {
		return nil, err
	}
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, orNotFound(err)
	}
	return s.statusLog.ListByEntity(ctx, model.EntityTrip, tripID)
}

func (s *TripService) List(ctx context.Context, principal model.Principal, filter repository.TripFilter) ([]model.TripRecord, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityTrip})); err != nil {
		return nil, err
	}

	// Drivers see their own trips only.
	if principal.IsDriver() && principal.DriverID != nil {
		filter.DriverID = principal.DriverID
	}

	trips, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	records := make([]model.TripRecord, 0, len(trips))
	for _, t := range trips {
		records = append(records, model.NewTripRecord(t))
	}
	return records, nil
}

// transition performs a plain status move that touches no claim slots.
func (s *TripService) transition(ctx context.Context, principal model.Principal, tripID uuid.UUID, to model.TripStatus, note string, extra map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.trips.WithTx(tx).GetForUpdate(ctx, tripID)
		if err != nil {
			return orNotFound(err)
		}
		if !current.Status.CanTransitionTo(to) {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{"status": to}
		for k, v := range extra {
			updates[k] = v
		}
		if err := s.trips.WithTx(tx).UpdateFields(ctx, tripID, updates); err != nil {
			return err
		}
		return s.logTransition(ctx, tx, tripID, current.Status, to, note, &principal.ActorID)
	})
}

func (s *TripService) authorizeTransition(principal model.Principal, trip *model.Trip) error {
	return fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{
		Kind:             model.EntityTrip,
		AssigneeDriverID: &trip.DriverID,
	}))
}

func (s *TripService) logTransition(ctx context.Context, tx *gorm.DB, tripID uuid.UUID, from, to model.TripStatus, note string, changedBy *uuid.UUID) error {
	old := string(from)
	return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
		EntityKind: model.EntityTrip,
		EntityID:   tripID,
		OldStatus:  &old,
		NewStatus:  string(to),
		Note:       note,
		ChangedBy:  changedBy,
	})
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
