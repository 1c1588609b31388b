package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/authz"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// AlertService drives the alert state machine. Alerts reference other
// entities but never touch the availability ledger; concurrent transitions
// are guarded by conditional updates on the status column.
type AlertService struct {
	db        *gorm.DB
	alerts    *repository.AlertRepository
	statusLog *repository.StatusLogRepository

	now func() time.Time
}

func NewAlertService(db *gorm.DB, alerts *repository.AlertRepository, statusLog *repository.StatusLogRepository) *AlertService {
	return &AlertService{
		db:        db,
		alerts:    alerts,
		statusLog: statusLog,
		now:       time.Now,
	}
}

type CreateAlertInput struct {
	Type      model.AlertType
	Severity  model.AlertSeverity
	Title     string
	Message   string
	VehicleID *uuid.UUID
	DriverID  *uuid.UUID
	TripID    *uuid.UUID
	ActorID   *uuid.UUID
	ExpiresAt *time.Time
}

func (s *AlertService) Create(ctx context.Context, principal model.Principal, input CreateAlertInput) (*model.Alert, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionCreate, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrValidationFailed
	}

	alert := &model.Alert{
		Type:      input.Type,
		Severity:  input.Severity,
		Status:    model.AlertStatusActive,
		Title:     strings.TrimSpace(input.Title),
		Message:   strings.TrimSpace(input.Message),
		VehicleID: input.VehicleID,
		DriverID:  input.DriverID,
		TripID:    input.TripID,
		ActorID:   input.ActorID,
		ExpiresAt: input.ExpiresAt,
		CreatedBy: &principal.ActorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.alerts.WithTx(tx).Create(ctx, alert); err != nil {
			return err
		}
		return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
			EntityKind: model.EntityAlert,
			EntityID:   alert.ID,
			NewStatus:  string(model.AlertStatusActive),
			ChangedBy:  &principal.ActorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// Acknowledge requires the alert to still be active; anything else fails
// with ErrAlreadyAcknowledged.
func (s *AlertService) Acknowledge(ctx context.Context, principal model.Principal, id uuid.UUID, note string) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alert, err := s.alerts.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return orNotFound(err)
		}

		rows, err := s.alerts.WithTx(tx).UpdateGuarded(ctx, id,
			[]model.AlertStatus{model.AlertStatusActive},
			map[string]interface{}{
				"status":          model.AlertStatusAcknowledged,
				"acknowledged_by": principal.ActorID,
				"acknowledged_at": now,
				"ack_note":        strings.TrimSpace(note),
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyAcknowledged
		}

		return s.logTransition(ctx, tx, id, alert.Status, model.AlertStatusAcknowledged, note, &principal.ActorID)
	})
}

// Resolve does not require prior acknowledgment, but a resolution can only
// be set once.
func (s *AlertService) Resolve(ctx context.Context, principal model.Principal, id uuid.UUID, note, action string) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alert, err := s.alerts.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		if alert.Status == model.AlertStatusResolved {
			return ErrAlreadyResolved
		}

		rows, err := s.alerts.WithTx(tx).UpdateGuarded(ctx, id,
			[]model.AlertStatus{model.AlertStatusActive, model.AlertStatusAcknowledged},
			map[string]interface{}{
				"status":            model.AlertStatusResolved,
				"resolved_by":       principal.ActorID,
				"resolved_at":       now,
				"resolution_note":   strings.TrimSpace(note),
				"resolution_action": strings.TrimSpace(action),
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyResolved
		}

		return s.logTransition(ctx, tx, id, alert.Status, model.AlertStatusResolved, note, &principal.ActorID)
	})
}

// Dismiss works from active or acknowledged.
func (s *AlertService) Dismiss(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return err
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alert, err := s.alerts.WithTx(tx).GetByID(ctx, id)
		if err != nil {
			return orNotFound(err)
		}

		rows, err := s.alerts.WithTx(tx).UpdateGuarded(ctx, id,
			[]model.AlertStatus{model.AlertStatusActive, model.AlertStatusAcknowledged},
			map[string]interface{}{
				"status":       model.AlertStatusDismissed,
				"dismissed_by": principal.ActorID,
				"dismissed_at": now,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidTransition
		}

		return s.logTransition(ctx, tx, id, alert.Status, model.AlertStatusDismissed, "", &principal.ActorID)
	})
}

// ExpireDue applies the time-based expiry policy: every active or
// acknowledged alert past its expires_at moves to expired. Returns how many
// alerts were expired. ChangedBy is nil in the audit log: this is a system
// action.
func (s *AlertService) ExpireDue(ctx context.Context, principal model.Principal) (int, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionTransition, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return 0, err
	}

	now := s.now()
	due, err := s.alerts.ListExpiryDue(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, alert := range due {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rows, err := s.alerts.WithTx(tx).UpdateGuarded(ctx, alert.ID,
				[]model.AlertStatus{model.AlertStatusActive, model.AlertStatusAcknowledged},
				map[string]interface{}{"status": model.AlertStatusExpired})
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}
			expired++
			return s.logTransition(ctx, tx, alert.ID, alert.Status, model.AlertStatusExpired, "expiry sweep", nil)
		})
		if err != nil {
			return expired, err
		}
	}
	return expired, nil
}

func (s *AlertService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Alert, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return nil, err
	}
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	return alert, nil
}

// History returns the status audit trail for an alert, oldest first.
func (s *AlertService) History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.StatusLog, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return nil, err
	}
	if _, err := s.alerts.GetByID(ctx, id); err != nil {
		return nil, orNotFound(err)
	}
	return s.statusLog.ListByEntity(ctx, model.EntityAlert, id)
}

func (s *AlertService) List(ctx context.Context, principal model.Principal, filter repository.AlertFilter) ([]model.Alert, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionRead, authz.Resource{Kind: model.EntityAlert})); err != nil {
		return nil, err
	}

	// Drivers see alerts referencing themselves.
	if principal.IsDriver() && principal.DriverID != nil {
		filter.DriverID = principal.DriverID
	}

	return s.alerts.List(ctx, filter)
}

func (s *AlertService) logTransition(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to model.AlertStatus, note string, changedBy *uuid.UUID) error {
	old := string(from)
	return s.statusLog.WithTx(tx).Append(ctx, &model.StatusLog{
		EntityKind: model.EntityAlert,
		EntityID:   id,
		OldStatus:  &old,
		NewStatus:  string(to),
		Note:       note,
		ChangedBy:  changedBy,
	})
}
