package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"fleet-service/internal/auth"
	"fleet-service/internal/authz"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// ActorService covers account administration. Only admins pass the
// manage-accounts gate; dispatchers manage the fleet, not the people who
// log in.
type ActorService struct {
	actors *repository.ActorRepository
}

func NewActorService(actors *repository.ActorRepository) *ActorService {
	return &ActorService{actors: actors}
}

type CreateActorInput struct {
	Email    string
	FullName string
	Phone    string
	Password string
	Role     model.ActorRole
	DriverID *uuid.UUID
}

func (s *ActorService) Create(ctx context.Context, principal model.Principal, input CreateActorInput) (*model.Actor, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionManageAccounts, authz.Resource{})); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || len(input.Password) < 8 || strings.TrimSpace(input.FullName) == "" {
		return nil, ErrValidationFailed
	}
	switch input.Role {
	case model.RoleAdmin, model.RoleDispatcher, model.RoleDriver, model.RoleViewer:
	default:
		return nil, ErrValidationFailed
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	actor := &model.Actor{
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     true,
		DriverID:     input.DriverID,
	}
	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// Deactivate soft-disables an account; there is no hard delete.
func (s *ActorService) Deactivate(ctx context.Context, principal model.Principal, actorID uuid.UUID) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionManageAccounts, authz.Resource{})); err != nil {
		return err
	}
	if _, err := s.actors.GetByID(ctx, actorID); err != nil {
		return orNotFound(err)
	}
	return s.actors.Deactivate(ctx, actorID)
}

// Unlock clears a lockout window and the failure counter ahead of schedule.
func (s *ActorService) Unlock(ctx context.Context, principal model.Principal, actorID uuid.UUID) error {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionManageAccounts, authz.Resource{})); err != nil {
		return err
	}
	if _, err := s.actors.GetByID(ctx, actorID); err != nil {
		return orNotFound(err)
	}
	return s.actors.Unlock(ctx, actorID)
}

func (s *ActorService) Get(ctx context.Context, principal model.Principal, actorID uuid.UUID) (*model.Actor, error) {
	// Own profile is always readable; everything else needs the gate.
	if principal.ActorID != actorID {
		if err := fromAuthz(authz.Authorize(principal, authz.ActionManageAccounts, authz.Resource{})); err != nil {
			return nil, err
		}
	}
	actor, err := s.actors.GetByID(ctx, actorID)
	if err != nil {
		return nil, orNotFound(err)
	}
	return actor, nil
}

func (s *ActorService) List(ctx context.Context, principal model.Principal, limit, offset int) ([]model.Actor, error) {
	if err := fromAuthz(authz.Authorize(principal, authz.ActionManageAccounts, authz.Resource{})); err != nil {
		return nil, err
	}
	return s.actors.List(ctx, limit, offset)
}
