package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fleet-service/internal/model"
)

func driverPrincipal() (model.Principal, uuid.UUID) {
	driverID := uuid.New()
	return model.Principal{
		ActorID:  uuid.New(),
		Role:     model.RoleDriver,
		DriverID: &driverID,
	}, driverID
}

func TestAdminAllowedEverything(t *testing.T) {
	p := model.Principal{ActorID: uuid.New(), Role: model.RoleAdmin}
	for _, action := range []Action{ActionRead, ActionCreate, ActionUpdate, ActionTransition, ActionManageAccounts} {
		assert.NoError(t, Authorize(p, action, Resource{}))
	}
}

func TestDispatcherDeniedAccountAdministration(t *testing.T) {
	p := model.Principal{ActorID: uuid.New(), Role: model.RoleDispatcher}

	assert.NoError(t, Authorize(p, ActionCreate, Resource{Kind: model.EntityTrip}))
	assert.NoError(t, Authorize(p, ActionTransition, Resource{Kind: model.EntityMaintenance}))
	assert.ErrorIs(t, Authorize(p, ActionManageAccounts, Resource{}), ErrAccessDenied)
}

func TestDriverOwnershipChecks(t *testing.T) {
	p, driverID := driverPrincipal()
	otherDriver := uuid.New()

	ownTrip := Resource{Kind: model.EntityTrip, AssigneeDriverID: &driverID}
	foreignTrip := Resource{Kind: model.EntityTrip, AssigneeDriverID: &otherDriver}

	assert.NoError(t, Authorize(p, ActionRead, foreignTrip))
	assert.NoError(t, Authorize(p, ActionTransition, ownTrip))
	assert.ErrorIs(t, Authorize(p, ActionTransition, foreignTrip), ErrAccessDenied)
	assert.ErrorIs(t, Authorize(p, ActionUpdate, foreignTrip), ErrAccessDenied)
	assert.ErrorIs(t, Authorize(p, ActionCreate, Resource{}), ErrAccessDenied)
}

func TestDriverOwnProfileFieldAllowList(t *testing.T) {
	p, _ := driverPrincipal()
	own := Resource{OwnerActorID: &p.ActorID}

	assert.NoError(t, AuthorizeFieldUpdate(p, own, []string{"phone"}))
	assert.NoError(t, AuthorizeFieldUpdate(p, own, []string{"phone", "emergency_contact"}))

	// Restricted fields fail even on the driver's own record.
	assert.ErrorIs(t, AuthorizeFieldUpdate(p, own, []string{"salary"}), ErrAccessDenied)
	assert.ErrorIs(t, AuthorizeFieldUpdate(p, own, []string{"phone", "role"}), ErrAccessDenied)

	// Another driver's record fails outright.
	other := uuid.New()
	assert.ErrorIs(t, AuthorizeFieldUpdate(p, Resource{OwnerActorID: &other}, []string{"phone"}), ErrAccessDenied)
}

func TestDispatcherFieldUpdateUnrestricted(t *testing.T) {
	p := model.Principal{ActorID: uuid.New(), Role: model.RoleDispatcher}
	assert.NoError(t, AuthorizeFieldUpdate(p, Resource{}, []string{"salary", "license_number"}))
}

func TestViewerReadOnly(t *testing.T) {
	p := model.Principal{ActorID: uuid.New(), Role: model.RoleViewer}

	assert.NoError(t, Authorize(p, ActionRead, Resource{}))
	assert.ErrorIs(t, Authorize(p, ActionUpdate, Resource{}), ErrAccessDenied)
	assert.ErrorIs(t, Authorize(p, ActionTransition, Resource{}), ErrAccessDenied)
}

func TestMissingPrincipal(t *testing.T) {
	assert.ErrorIs(t, Authorize(model.Principal{}, ActionRead, Resource{}), ErrAuthenticationRequired)
}
