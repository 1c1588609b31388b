package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet-service/internal/auth"
	"fleet-service/internal/model"
)

type fakeActorStore struct {
	actors map[uuid.UUID]*model.Actor
}

func newFakeActorStore(actors ...*model.Actor) *fakeActorStore {
	store := &fakeActorStore{actors: make(map[uuid.UUID]*model.Actor)}
	for _, a := range actors {
		store.actors[a.ID] = a
	}
	return store
}

func (s *fakeActorStore) GetByEmail(_ context.Context, email string) (*model.Actor, error) {
	for _, a := range s.actors {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeActorStore) GetByID(_ context.Context, id uuid.UUID) (*model.Actor, error) {
	a, ok := s.actors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeActorStore) GetByResetTokenHash(_ context.Context, tokenHash string) (*model.Actor, error) {
	for _, a := range s.actors {
		if a.ResetTokenHash != nil && *a.ResetTokenHash == tokenHash {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeActorStore) SaveLoginState(_ context.Context, actor *model.Actor) error {
	stored, ok := s.actors[actor.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FailedAttempts = actor.FailedAttempts
	stored.LockUntil = actor.LockUntil
	return nil
}

func (s *fakeActorStore) SetResetToken(_ context.Context, actorID uuid.UUID, tokenHash string, expiry time.Time) error {
	stored, ok := s.actors[actorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ResetTokenHash = &tokenHash
	stored.ResetTokenExpiry = &expiry
	return nil
}

func (s *fakeActorStore) CompleteReset(_ context.Context, actorID uuid.UUID, passwordHash string) error {
	stored, ok := s.actors[actorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PasswordHash = passwordHash
	stored.ResetTokenHash = nil
	stored.ResetTokenExpiry = nil
	stored.FailedAttempts = 0
	stored.LockUntil = nil
	return nil
}

func newTestSessionService(t *testing.T, actors ...*model.Actor) (*SessionService, *fakeActorStore) {
	t.Helper()

	store := newFakeActorStore(actors...)
	svc := NewSessionService(
		store,
		auth.NewTokenManager("test-secret", time.Hour),
		auth.NewLoginLimiter(time.Minute, 10, 100),
		SessionConfig{
			MaxFailedLogins: 5,
			LockoutWindow:   15 * time.Minute,
			ResetTokenTTL:   30 * time.Minute,
		},
	)
	return svc, store
}

func testActor(t *testing.T, email, password string) *model.Actor {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &model.Actor{
		ID:           uuid.New(),
		Email:        email,
		FullName:     "Test Actor",
		PasswordHash: hash,
		Role:         model.RoleDispatcher,
		IsActive:     true,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	svc, _ := newTestSessionService(t, actor)

	res, err := svc.Authenticate(context.Background(), "Dispatch@Example.com", "correct-horse", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, actor.ID, res.Actor.ID)

	principal, err := svc.Verify(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, principal.ActorID)
	assert.Equal(t, model.RoleDispatcher, principal.Role)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	svc, store := newTestSessionService(t, actor)

	_, err := svc.Authenticate(context.Background(), "dispatch@example.com", "wrong", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, store.actors[actor.ID].FailedAttempts)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _ := newTestSessionService(t)

	// Unknown accounts return the same error as a bad password.
	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLockout(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	svc, store := newTestSessionService(t, actor)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(ctx, "dispatch@example.com", "wrong", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	require.NotNil(t, store.actors[actor.ID].LockUntil)

	// Correct password while locked still fails.
	_, err := svc.Authenticate(ctx, "dispatch@example.com", "correct-horse", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// After the window expires the account opens up again.
	svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	res, err := svc.Authenticate(ctx, "dispatch@example.com", "correct-horse", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 0, store.actors[actor.ID].FailedAttempts)
	assert.Nil(t, store.actors[actor.ID].LockUntil)
}

func TestAuthenticateSuccessResetsCounter(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	svc, store := newTestSessionService(t, actor)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Authenticate(ctx, "dispatch@example.com", "wrong", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Authenticate(ctx, "dispatch@example.com", "correct-horse", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 0, store.actors[actor.ID].FailedAttempts)
}

func TestAuthenticateRateLimited(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()

	// The limiter applies before any account lookup, so it also throttles
	// guessing against emails that do not exist.
	var last error
	for i := 0; i < 11; i++ {
		_, last = svc.Authenticate(ctx, "nobody@example.com", "wrong", "10.0.0.1")
	}
	assert.ErrorIs(t, last, ErrRateLimited)

	// A different source address has its own budget.
	_, err := svc.Authenticate(ctx, "nobody@example.com", "wrong", "10.0.0.2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	actor.IsActive = false
	svc, _ := newTestSessionService(t, actor)

	_, err := svc.Authenticate(context.Background(), "dispatch@example.com", "correct-horse", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestVerifyDeactivatedActor(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "correct-horse")
	svc, store := newTestSessionService(t, actor)
	ctx := context.Background()

	res, err := svc.Authenticate(ctx, "dispatch@example.com", "correct-horse", "10.0.0.1")
	require.NoError(t, err)

	// Deactivation invalidates outstanding tokens.
	store.actors[actor.ID].IsActive = false
	_, err = svc.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestVerifyGarbageToken(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordResetFlow(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "old-password")
	svc, store := newTestSessionService(t, actor)
	ctx := context.Background()

	token, err := svc.RequestPasswordReset(ctx, "dispatch@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The stored value is a hash, never the token itself.
	require.NotNil(t, store.actors[actor.ID].ResetTokenHash)
	assert.NotEqual(t, token, *store.actors[actor.ID].ResetTokenHash)

	require.NoError(t, svc.ResetPassword(ctx, token, "new-password-1"))

	// Token is single-use.
	err = svc.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Authenticate(ctx, "dispatch@example.com", "old-password", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "dispatch@example.com", "new-password-1", "10.0.0.1")
	require.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "old-password")
	svc, _ := newTestSessionService(t, actor)
	ctx := context.Background()

	token, err := svc.RequestPasswordReset(ctx, "dispatch@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	err = svc.ResetPassword(ctx, token, "new-password-1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPasswordWeakPassword(t *testing.T) {
	svc, _ := newTestSessionService(t)

	err := svc.ResetPassword(context.Background(), "irrelevant", "short")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestResetPasswordClearsLockout(t *testing.T) {
	actor := testActor(t, "dispatch@example.com", "old-password")
	svc, store := newTestSessionService(t, actor)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = svc.Authenticate(ctx, "dispatch@example.com", "wrong", "10.0.0.1")
	}
	require.NotNil(t, store.actors[actor.ID].LockUntil)

	token, err := svc.RequestPasswordReset(ctx, "dispatch@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(ctx, token, "new-password-1"))

	assert.Nil(t, store.actors[actor.ID].LockUntil)
	assert.Equal(t, 0, store.actors[actor.ID].FailedAttempts)
}
