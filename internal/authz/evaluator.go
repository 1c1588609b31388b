// Package authz decides whether an actor may perform an action on a
// resource. It is a pure evaluator: services call it before any lifecycle
// transition, and the transition methods themselves assume the caller is
// already authorized.
package authz

import (
	"errors"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionTransition Action = "transition"
	// ActionManageAccounts covers actor administration: create, deactivate,
	// unlock. Admin only.
	ActionManageAccounts Action = "manage-accounts"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")
)

// Resource describes the target's ownership links for the decision.
// OwnerActorID is set when the resource is an actor's own record;
// AssigneeDriverID is set for vehicles (assigned driver) and trips (driver).
type Resource struct {
	Kind             model.EntityKind
	OwnerActorID     *uuid.UUID
	AssigneeDriverID *uuid.UUID
}

// driverSelfEditable is the allow-list of profile fields a driver may change
// on their own record. Everything else (identity, role, salary, license)
// stays admin/dispatcher territory.
var driverSelfEditable = map[string]bool{
	"phone":             true,
	"emergency_contact": true,
}

// Authorize maps (role, ownership, action) to allow or a typed denial.
func Authorize(p model.Principal, action Action, res Resource) error {
	if p.ActorID == uuid.Nil {
		return ErrAuthenticationRequired
	}

	switch p.Role {
	case model.RoleAdmin:
		return nil

	case model.RoleDispatcher:
		if action == ActionManageAccounts {
			return ErrAccessDenied
		}
		return nil

	case model.RoleDriver:
		switch action {
		case ActionRead:
			return nil
		case ActionUpdate, ActionTransition:
			if ownedBy(p, res) {
				return nil
			}
			return ErrAccessDenied
		default:
			return ErrAccessDenied
		}

	case model.RoleViewer:
		if action == ActionRead {
			return nil
		}
		return ErrAccessDenied

	default:
		return ErrAccessDenied
	}
}

// AuthorizeFieldUpdate applies the field allow-list on top of Authorize for
// profile edits. Drivers updating their own record are limited to
// driverSelfEditable fields; restricted fields fail even on own resources.
func AuthorizeFieldUpdate(p model.Principal, res Resource, fields []string) error {
	if err := Authorize(p, ActionUpdate, res); err != nil {
		return err
	}
	if p.Role != model.RoleDriver {
		return nil
	}
	for _, f := range fields {
		if !driverSelfEditable[f] {
			return ErrAccessDenied
		}
	}
	return nil
}

// Ownership compares ids as strings: the caller's actor id against the
// record owner, and the caller's driver id against the assignee.
func ownedBy(p model.Principal, res Resource) bool {
	if res.OwnerActorID != nil && res.OwnerActorID.String() == p.ActorID.String() {
		return true
	}
	if res.AssigneeDriverID != nil && p.DriverID != nil &&
		res.AssigneeDriverID.String() == p.DriverID.String() {
		return true
	}
	return false
}
