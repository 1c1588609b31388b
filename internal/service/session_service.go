package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet-service/internal/auth"
	"fleet-service/internal/model"
)

// ActorStore is the slice of actor persistence the session manager needs.
// *repository.ActorRepository satisfies it.
type ActorStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Actor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Actor, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*model.Actor, error)
	SaveLoginState(ctx context.Context, actor *model.Actor) error
	SetResetToken(ctx context.Context, actorID uuid.UUID, tokenHash string, expiry time.Time) error
	CompleteReset(ctx context.Context, actorID uuid.UUID, passwordHash string) error
}

type SessionConfig struct {
	MaxFailedLogins int
	LockoutWindow   time.Duration
	ResetTokenTTL   time.Duration
}

// SessionService issues and verifies sessions, tracks per-account lockout,
// and throttles raw login traffic before any account state is consulted.
type SessionService struct {
	actors  ActorStore
	tokens  *auth.TokenManager
	limiter *auth.LoginLimiter
	cfg     SessionConfig

	now func() time.Time
}

func NewSessionService(actors ActorStore, tokens *auth.TokenManager, limiter *auth.LoginLimiter, cfg SessionConfig) *SessionService {
	return &SessionService{
		actors:  actors,
		tokens:  tokens,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

type AuthResult struct {
	Token string       `json:"token"`
	Actor *model.Actor `json:"actor"`
}

// Authenticate verifies credentials for the given source address. The
// coarse rate limit is keyed by (source, email) and applies before the
// account is even looked up, so it also covers guessing against
// non-existent accounts.
func (s *SessionService) Authenticate(ctx context.Context, email, password, sourceAddr string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrValidationFailed
	}

	now := s.now()
	if !s.limiter.Allow(sourceAddr+"|"+email, now) {
		return nil, ErrRateLimited
	}

	actor, err := s.actors.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(orNotFound(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !actor.IsActive {
		return nil, ErrAccountInactive
	}
	if actor.Locked(now) {
		return nil, ErrAccountLocked
	}

	if !auth.CheckPassword(password, actor.PasswordHash) {
		actor.RegisterFailedLogin(now, s.cfg.MaxFailedLogins, s.cfg.LockoutWindow)
		if err := s.actors.SaveLoginState(ctx, actor); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	actor.RegisterSuccessfulLogin()
	if err := s.actors.SaveLoginState(ctx, actor); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(actor, now)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, Actor: actor}, nil
}

// Verify resolves a bearer token to a live principal. The actor behind the
// token must still exist and be active; a deactivated account invalidates
// all of its outstanding tokens.
func (s *SessionService) Verify(ctx context.Context, token string) (model.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return model.Principal{}, ErrTokenExpired
		}
		return model.Principal{}, ErrTokenInvalid
	}

	actor, err := s.actors.GetByID(ctx, claims.ActorID)
	if err != nil {
		if errors.Is(orNotFound(err), ErrNotFound) {
			return model.Principal{}, ErrTokenInvalid
		}
		return model.Principal{}, err
	}
	if !actor.IsActive {
		return model.Principal{}, ErrAccountInactive
	}

	return model.Principal{
		ActorID:  actor.ID,
		Role:     actor.Role,
		DriverID: actor.DriverID,
	}, nil
}

// RequestPasswordReset issues a single-use, time-boxed reset token. Only
// its hash is stored.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	actor, err := s.actors.GetByEmail(ctx, email)
	if err != nil {
		return "", orNotFound(err)
	}
	if !actor.IsActive {
		return "", ErrAccountInactive
	}

	token, tokenHash, err := auth.NewResetToken()
	if err != nil {
		return "", err
	}
	expiry := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.actors.SetResetToken(ctx, actor.ID, tokenHash, expiry); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes the token: mismatched or expired tokens fail with
// ErrTokenInvalid, and a successful reset burns the token and clears any
// lockout.
func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrValidationFailed
	}

	actor, err := s.actors.GetByResetTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(orNotFound(err), ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if actor.ResetTokenExpiry == nil || s.now().After(*actor.ResetTokenExpiry) {
		return ErrTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.actors.CompleteReset(ctx, actor.ID, hash)
}
