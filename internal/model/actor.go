package model

import (
	"time"

	"github.com/google/uuid"
)

type ActorRole string

const (
	RoleAdmin      ActorRole = "admin"
	RoleDispatcher ActorRole = "dispatcher"
	RoleDriver     ActorRole = "driver"
	RoleViewer     ActorRole = "viewer"
)

// Actor is an authenticated account. Accounts are never hard-deleted;
// deactivation flips IsActive off.
type Actor struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         ActorRole `gorm:"type:actor_role;not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`

	FailedAttempts int        `gorm:"not null;default:0" json:"-"`
	LockUntil      *time.Time `json:"-"`

	ResetTokenHash   *string    `gorm:"type:varchar(64)" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// DriverID links a driver-role account to its driver record.
	DriverID *uuid.UUID `gorm:"type:uuid" json:"driver_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Actor) TableName() string {
	return "actors"
}

// Locked reports whether the account is inside a lockout window.
func (a *Actor) Locked(now time.Time) bool {
	return a.LockUntil != nil && now.Before(*a.LockUntil)
}

// RegisterFailedLogin bumps the failure counter and, once threshold is
// crossed, opens a lockout window. Counter keeps incrementing while locked
// so repeated attempts extend nothing but stay visible.
func (a *Actor) RegisterFailedLogin(now time.Time, threshold int, window time.Duration) {
	a.FailedAttempts++
	if a.FailedAttempts >= threshold {
		until := now.Add(window)
		a.LockUntil = &until
	}
}

// RegisterSuccessfulLogin clears the failure counter and any lockout.
func (a *Actor) RegisterSuccessfulLogin() {
	a.FailedAttempts = 0
	a.LockUntil = nil
}
