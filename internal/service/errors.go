package service

import (
	"errors"

	"gorm.io/gorm"

	"fleet-service/internal/authz"
)

// Core failure taxonomy. Every service method returns one of these (or an
// opaque storage error) so the HTTP layer can map failures in one place.
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountLocked          = errors.New("account locked")
	ErrAccountInactive        = errors.New("account inactive")
	ErrTokenInvalid           = errors.New("token invalid")
	ErrTokenExpired           = errors.New("token expired")
	ErrAccessDenied           = errors.New("access denied")
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrResourceUnavailable    = errors.New("resource unavailable")
	ErrAlreadyAcknowledged    = errors.New("alert already acknowledged")
	ErrAlreadyResolved        = errors.New("alert already resolved")
	ErrRateLimited            = errors.New("too many attempts")
	ErrValidationFailed       = errors.New("validation failed")
)

// fromAuthz translates evaluator denials into the service taxonomy.
func fromAuthz(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authz.ErrAuthenticationRequired):
		return ErrAuthenticationRequired
	case errors.Is(err, authz.ErrAccessDenied):
		return ErrAccessDenied
	default:
		return err
	}
}

// orNotFound collapses a missing row into ErrNotFound.
func orNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
