package model

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in-progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
	MaintenanceStatusPostponed  MaintenanceStatus = "postponed"
)

// MaintenanceOverdueLabel is a derived read-only label, never stored:
// a record still scheduled past its scheduled date reads as overdue.
const MaintenanceOverdueLabel = "overdue"

var maintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenanceStatusScheduled:  {MaintenanceStatusInProgress, MaintenanceStatusCancelled, MaintenanceStatusPostponed},
	MaintenanceStatusPostponed:  {MaintenanceStatusScheduled, MaintenanceStatusCancelled},
	MaintenanceStatusInProgress: {MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusCompleted:  {},
	MaintenanceStatusCancelled:  {},
}

func (s MaintenanceStatus) CanTransitionTo(to MaintenanceStatus) bool {
	for _, allowed := range maintenanceTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s MaintenanceStatus) Terminal() bool {
	return len(maintenanceTransitions[s]) == 0
}

type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceRepair     MaintenanceType = "repair"
	MaintenanceInspection MaintenanceType = "inspection"
)

type Maintenance struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID uuid.UUID         `gorm:"type:uuid;not null" json:"vehicle_id"`
	Type      MaintenanceType   `gorm:"type:maintenance_type;not null" json:"type"`
	Status    MaintenanceStatus `gorm:"type:maintenance_status;not null;default:'scheduled'" json:"status"`

	Description   string    `gorm:"type:text" json:"description"`
	ScheduledDate time.Time `gorm:"not null" json:"scheduled_date"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	VehicleConditionBefore string `gorm:"type:text" json:"vehicle_condition_before,omitempty"`
	VehicleConditionAfter  string `gorm:"type:text" json:"vehicle_condition_after,omitempty"`
	WorkPerformed          string `gorm:"type:text" json:"work_performed,omitempty"`
	Findings               string `gorm:"type:text" json:"findings,omitempty"`
	InspectionPassed       *bool  `json:"inspection_passed,omitempty"`

	CostCents int64 `gorm:"not null;default:0" json:"cost_cents"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle   *Vehicle              `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Approvals []MaintenanceApproval `gorm:"foreignKey:MaintenanceID" json:"approvals,omitempty"`
}

func (Maintenance) TableName() string {
	return "maintenance_records"
}

// Overdue reports whether the record should carry the derived overdue label.
func (m *Maintenance) Overdue(now time.Time) bool {
	return m.Status == MaintenanceStatusScheduled && m.ScheduledDate.Before(now)
}

// MaintenanceApproval is orthogonal to the status machine. StatusAtApproval
// preserves what state the record was in when approved, since approval is
// not gated on completion.
type MaintenanceApproval struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	MaintenanceID    uuid.UUID         `gorm:"type:uuid;not null" json:"maintenance_id"`
	ApprovedBy       uuid.UUID         `gorm:"type:uuid;not null" json:"approved_by"`
	Comments         string            `gorm:"type:text" json:"comments"`
	StatusAtApproval MaintenanceStatus `gorm:"type:maintenance_status;not null" json:"status_at_approval"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (MaintenanceApproval) TableName() string {
	return "maintenance_approvals"
}
