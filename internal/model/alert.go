package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusDismissed    AlertStatus = "dismissed"
	AlertStatusExpired      AlertStatus = "expired"
)

var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusActive:       {AlertStatusAcknowledged, AlertStatusResolved, AlertStatusDismissed, AlertStatusExpired},
	AlertStatusAcknowledged: {AlertStatusResolved, AlertStatusDismissed, AlertStatusExpired},
	AlertStatusResolved:     {},
	AlertStatusDismissed:    {},
	AlertStatusExpired:      {},
}

func (s AlertStatus) CanTransitionTo(to AlertStatus) bool {
	for _, allowed := range alertTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type AlertType string

const (
	AlertMaintenanceDue AlertType = "maintenance-due"
	AlertLicenseExpiry  AlertType = "license-expiry"
	AlertTripDelay      AlertType = "trip-delay"
	AlertSecurity       AlertType = "security"
	AlertSystem         AlertType = "system"
)

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert references other entities but never touches the availability ledger.
type Alert struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Type     AlertType     `gorm:"type:alert_type;not null" json:"type"`
	Severity AlertSeverity `gorm:"type:alert_severity;not null" json:"severity"`
	Status   AlertStatus   `gorm:"type:alert_status;not null;default:'active'" json:"status"`

	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	VehicleID *uuid.UUID `gorm:"type:uuid" json:"vehicle_id,omitempty"`
	DriverID  *uuid.UUID `gorm:"type:uuid" json:"driver_id,omitempty"`
	TripID    *uuid.UUID `gorm:"type:uuid" json:"trip_id,omitempty"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	AcknowledgedBy *uuid.UUID `gorm:"type:uuid" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AckNote        string     `gorm:"type:text" json:"ack_note,omitempty"`

	ResolvedBy       *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote   string     `gorm:"type:text" json:"resolution_note,omitempty"`
	ResolutionAction string     `gorm:"type:varchar(64)" json:"resolution_action,omitempty"`

	DismissedBy *uuid.UUID `gorm:"type:uuid" json:"dismissed_by,omitempty"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`

	// CreatedBy is nil for system-generated alerts.
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// ExpiryDue reports whether a time-based expiry should fire.
func (a *Alert) ExpiryDue(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	if a.Status != AlertStatusActive && a.Status != AlertStatusAcknowledged {
		return false
	}
	return !a.ExpiresAt.After(now)
}
