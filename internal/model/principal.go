package model

import "github.com/google/uuid"

// Principal is the authenticated caller as seen by services. It is built
// from verified token claims by the HTTP middleware.
type Principal struct {
	ActorID  uuid.UUID
	Role     ActorRole
	DriverID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDispatcher() bool {
	return p.Role == RoleDispatcher
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}

func (p Principal) IsViewer() bool {
	return p.Role == RoleViewer
}
