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

// MaintenanceService drives the maintenance state machine. Start/Complete
// coordinate with the same vehicle claim slot trips use, so maintenance can
// never begin on a vehicle that is mid-trip.
type MaintenanceService struct {
	db          *gorm.DB
	maintenance *repository.MaintenanceRepository
	vehicles    *repository.VehicleRepository
	statusLog   *repository.StatusLogRepository
	ledger      *ledger.Ledger

	now func() time.Time
}

func NewMaintenanceService(
	db *gorm.DB,
	maintenance *repository.MaintenanceRepository,
	vehicles *repository.VehicleRepository,
	statusLog *repository.StatusLogRepository,
	ldg *ledger.Ledger,
) *MaintenanceService {
	return &MaintenanceService{
		db:          db,
		maintenance: maintenance,
		vehicles:    vehicles,
		statusLog:   statusLog,
		ledger:      ldg,
		now:         time.Now,
	}
}

type ScheduleMaintenanceInput struct {
	VehicleID     uuid.UUID
	Type          model.MaintenanceType
	Description   string
	ScheduledDate time.Time
	CostCents     int64
}

func (s *MaintenanceService) Schedule(ctx context.Context, principal model.Principal, input ScheduleMaintenanceInput) (*model.MaintenanceRecordView, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionCreate, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return nil, err
	}
	if input.ScheduledDate.IsZero() {
		return nil, ErrValidationFailed
	}

	if _, err := s.vehicles.GetByID(ctx, input.VehicleID); err != nil {
		return nil, orNotFound(err)
	}

	record := &model.Maintenance{
		VehicleID:     input.VehicleID,
		Type:          input.Type,
		Status:        model.MaintenanceStatusScheduled,
		Description:   strings.TrimSpace(input.Description),
		ScheduledDate: input.ScheduledDate,
		CostCents:     input.CostCents,
		CreatedBy:     principal.ActorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.maintenance.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
			EntityKind: model.EntityMaintenance,
			EntityID:   record.ID,
			NewStatus:  string(model.MaintenanceStatusScheduled),
			ChangedBy:  &principal.ActorID,
		})
	})
	if err != nil {
		return nil, err
	}

	view := model.NewMaintenanceView(*record, s.now())
	return &view, nil
}

// Start claims the vehicle slot for this maintenance record. A vehicle
// held by an in-progress trip fails with ErrResourceUnavailable.
func (s *MaintenanceService) Start(ctx context.Context, principal model.Principal, id uuid.UUID, vehicleConditionBefore string) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.maintenance.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		if current.Status != model.MaintenanceStatusScheduled {
			return ErrInvalidTransition
		}

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderMaintenance, ID: id}
		err = s.ledger.Claim(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
		)
		if err != nil {
			if errors.Is(err, ledger.ErrClaimed) {
				return ErrResourceUnavailable
			}
			return orNotFound(err)
		}

		// The slot store sets availability; status is a separate field.
		if err := s.vehicles.WithTx(tx).UpdateFields(ctx, current.VehicleID, map[string]interface{}{
			"status": model.VehicleStatusMaintenance,
		}); err != nil {
			return err
		}

		if err := s.maintenance.WithTx(tx).UpdateFields(ctx, id, map[string]interface{}{
			"status":                   model.MaintenanceStatusInProgress,
			"started_at":               now,
			"vehicle_condition_before": strings.TrimSpace(vehicleConditionBefore),
		}); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, id, current.Status, model.MaintenanceStatusInProgress, "", &principal.ActorID)
	})
}

type CompleteMaintenanceInput struct {
	WorkPerformed         string
	Findings              string
	VehicleConditionAfter string
	InspectionPassed      *bool
}

// Complete releases the vehicle claim and returns the vehicle to service.
func (s *MaintenanceService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID, input CompleteMaintenanceInput) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.maintenance.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		if current.Status != model.MaintenanceStatusInProgress {
			return ErrInvalidTransition
		}

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderMaintenance, ID: id}
		if err := s.ledger.Release(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
		); err != nil {
			return err
		}

		if err := s.vehicles.WithTx(tx).UpdateFields(ctx, current.VehicleID, map[string]interface{}{
			"status": model.VehicleStatusActive,
		}); err != nil {
			return err
		}

		if err := s.maintenance.WithTx(tx).UpdateFields(ctx, id, map[string]interface{}{
			"status":                  model.MaintenanceStatusCompleted,
			"completed_at":            now,
			"work_performed":          strings.TrimSpace(input.WorkPerformed),
			"findings":                strings.TrimSpace(input.Findings),
			"vehicle_condition_after": strings.TrimSpace(input.VehicleConditionAfter),
			"inspection_passed":       input.InspectionPassed,
		}); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, id, current.Status, model.MaintenanceStatusCompleted, "", &principal.ActorID)
	})
}

// Cancel works from any non-terminal status. If work already started the
// vehicle claim is released and the vehicle returns to service.
func (s *MaintenanceService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID, reason string) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.maintenance.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		if !current.Status.CanTransitionTo(model.MaintenanceStatusCancelled) {
			return ErrInvalidTransition
		}

		wasInProgress := current.Status == model.MaintenanceStatusInProgress

		store := repository.NewSlotStore(tx)
		holder := ledger.Holder{Kind: ledger.HolderMaintenance, ID: id}
		if err := s.ledger.Release(ctx, store, holder,
			ledger.Resource{Kind: ledger.KindVehicle, ID: current.VehicleID},
		); err != nil {
			return err
		}
		if wasInProgress {
			if err := s.vehicles.WithTx(tx).UpdateFields(ctx, current.VehicleID, map[string]interface{}{
				"status": model.VehicleStatusActive,
			}); err != nil {
				return err
			}
		}

		if err := s.maintenance.WithTx(tx).UpdateFields(ctx, id, map[string]interface{}{
			"status": model.MaintenanceStatusCancelled,
		}); err != nil {
			return err
		}

		return s.logTransition(ctx, tx, id, current.Status, model.MaintenanceStatusCancelled, reason, &principal.ActorID)
	})
}

// Postpone parks a scheduled record; Reschedule brings it back with a new
// date. Neither touches the ledger.
func (s *MaintenanceService) Postpone(ctx context.Context, principal model.Principal, id uuid.UUID, reason string) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return err
	}
	return s.plainTransition(ctx, principal, id, model.MaintenanceStatusPostponed, reason, nil)
}

func (s *MaintenanceService) Reschedule(ctx context.Context, principal model.Principal, id uuid.UUID, newDate time.Time) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return err
	}
	if newDate.IsZero() {
		return ErrValidationFailed
	}
	return s.plainTransition(ctx, principal, id, model.MaintenanceStatusScheduled, "", map[string]interface{}{
		"scheduled_date": newDate,
	})
}

// Approve records an approval without touching status or the ledger.
// Approval is not gated on completion; the stored status-at-approval keeps
// an early sign-off visible.
func (s *MaintenanceService) Approve(ctx context.Context, principal model.Principal, id uuid.UUID, comments string) (*model.MaintenanceApproval, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return nil, err
	}

	record, err := s.maintenance.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}

	approval := &model.MaintenanceApproval{
		MaintenanceID:    record.ID,
		ApprovedBy:       principal.ActorID,
		Comments:         strings.TrimSpace(comments),
		StatusAtApproval: record.Status,
	}
	if err := s.maintenance.AddApproval(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

func (s *MaintenanceService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.MaintenanceRecordView, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return nil, err
	}
	record, err := s.maintenance.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	view := model.NewMaintenanceView(*record, s.now())
	return &view, nil
}

// History returns the status audit trail for a maintenance record, oldest
// first.
func (s *MaintenanceService) History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.StatusLog, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return nil, err
	}
	if _, err := s.maintenance.GetByID(ctx, id); err != nil {
		return nil, orNotFound(err)
	}
	return s.statusLog.ListByEntity(ctx, model.EntityMaintenance, id)
}

func (s *MaintenanceService) List(ctx context.Context, principal model.Principal, filter repository.MaintenanceFilter) ([]model.MaintenanceRecordView, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityMaintenance})); err != nil {
		return nil, err
	}

	now := s.now()
	filter.Now = now
	records, err := s.maintenance.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]model.MaintenanceRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, model.NewMaintenanceView(r, now))
	}
	return views, nil
}

func (s *MaintenanceService) plainTransition(ctx context.Context, principal model.Principal, id uuid.UUID, to model.MaintenanceStatus, note string, extra map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.maintenance.WithTx(tx).GetForUpdate(ctx, id)
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
		if err := s.maintenance.WithTx(tx).UpdateFields(ctx, id, updates); err != nil {
			return err
		}
		return s.logTransition(ctx, tx, id, current.Status, to, note, &principal.ActorID)
	})
}

func (s *MaintenanceService) logTransition(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to model.MaintenanceStatus, note string, changedBy *uuid.UUID) error {
	old := string(from)
	return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
		EntityKind: model.EntityMaintenance,
		EntityID:   id,
		OldStatus:  &old,
		NewStatus:  string(to),
		Note:       note,
		ChangedBy:  changedBy,
	})
}
