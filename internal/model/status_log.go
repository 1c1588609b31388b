package model

import (
	"time"

	"github.com/google/uuid"
)

type EntityKind string

const (
	EntityTrip        EntityKind = "trip"
	EntityMaintenance EntityKind = "maintenance"
	EntityAlert       EntityKind = "alert"

	// Not logged, but used as authorization targets.
	EntityVehicle EntityKind = "vehicle"
	EntityDriver  EntityKind = "driver"
	EntityActor   EntityKind = "actor"
)

// StatusLog is the audit trail for lifecycle transitions. ChangedBy is nil
// for system-driven changes (e.g. alert expiry sweep).
type StatusLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EntityKind EntityKind `gorm:"type:varchar(16);not null" json:"entity_kind"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null" json:"entity_id"`
	OldStatus  *string    `gorm:"type:varchar(32)" json:"old_status,omitempty"`
	NewStatus  string     `gorm:"type:varchar(32);not null" json:"new_status"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	ChangedBy  *uuid.UUID `gorm:"type:uuid" json:"changed_by,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (StatusLog) TableName() string {
	return "status_log"
}
