package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	driverID := uuid.New()
	actor := &model.Actor{ID: uuid.New(), Role: model.RoleDriver, DriverID: &driverID}

	token, err := m.Issue(actor, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, claims.ActorID)
	assert.Equal(t, model.RoleDriver, claims.Role)
	require.NotNil(t, claims.DriverID)
	assert.Equal(t, driverID, *claims.DriverID)
}

func TestVerifyFailsClosed(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Token signed with a different secret.
	other := NewTokenManager("other-secret", time.Hour)
	token, err := other.Issue(&model.Actor{ID: uuid.New(), Role: model.RoleViewer}, time.Now())
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)

	token, err := m.Issue(&model.Actor{ID: uuid.New(), Role: model.RoleAdmin}, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword("s3cret-pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestResetTokenHashing(t *testing.T) {
	token, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, hash, HashResetToken(token))
	assert.NotEqual(t, hash, HashResetToken("tampered"))

	// Tokens are unique per issue.
	token2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}
