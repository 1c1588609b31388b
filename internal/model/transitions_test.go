package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTripTransitions(t *testing.T) {
	assert.True(t, TripStatusPlanned.CanTransitionTo(TripStatusAssigned))
	assert.True(t, TripStatusPlanned.CanTransitionTo(TripStatusInProgress))
	assert.True(t, TripStatusPlanned.CanTransitionTo(TripStatusCancelled))
	assert.True(t, TripStatusAssigned.CanTransitionTo(TripStatusInProgress))
	assert.True(t, TripStatusInProgress.CanTransitionTo(TripStatusCompleted))
	assert.True(t, TripStatusInProgress.CanTransitionTo(TripStatusCancelled))

	// No skipping forward or moving backward.
	assert.False(t, TripStatusPlanned.CanTransitionTo(TripStatusCompleted))
	assert.False(t, TripStatusAssigned.CanTransitionTo(TripStatusCompleted))
	assert.False(t, TripStatusInProgress.CanTransitionTo(TripStatusPlanned))
	assert.False(t, TripStatusCompleted.CanTransitionTo(TripStatusCancelled))
	assert.False(t, TripStatusCancelled.CanTransitionTo(TripStatusInProgress))

	assert.True(t, TripStatusCompleted.Terminal())
	assert.True(t, TripStatusCancelled.Terminal())
	assert.False(t, TripStatusInProgress.Terminal())
}

func TestMaintenanceTransitions(t *testing.T) {
	assert.True(t, MaintenanceStatusScheduled.CanTransitionTo(MaintenanceStatusInProgress))
	assert.True(t, MaintenanceStatusScheduled.CanTransitionTo(MaintenanceStatusPostponed))
	assert.True(t, MaintenanceStatusPostponed.CanTransitionTo(MaintenanceStatusScheduled))
	assert.True(t, MaintenanceStatusInProgress.CanTransitionTo(MaintenanceStatusCompleted))

	// Postponed work cannot start without being rescheduled first.
	assert.False(t, MaintenanceStatusPostponed.CanTransitionTo(MaintenanceStatusInProgress))
	assert.False(t, MaintenanceStatusInProgress.CanTransitionTo(MaintenanceStatusPostponed))
	assert.False(t, MaintenanceStatusCompleted.CanTransitionTo(MaintenanceStatusScheduled))
	assert.False(t, MaintenanceStatusCancelled.CanTransitionTo(MaintenanceStatusScheduled))

	assert.True(t, MaintenanceStatusCompleted.Terminal())
	assert.True(t, MaintenanceStatusCancelled.Terminal())
	assert.False(t, MaintenanceStatusPostponed.Terminal())
}

func TestMaintenanceOverdue(t *testing.T) {
	now := time.Now()
	record := &Maintenance{
		Status:        MaintenanceStatusScheduled,
		ScheduledDate: now.Add(-time.Hour),
	}
	assert.True(t, record.Overdue(now))

	record.ScheduledDate = now.Add(time.Hour)
	assert.False(t, record.Overdue(now))

	// Only still-scheduled records read as overdue.
	record.ScheduledDate = now.Add(-time.Hour)
	record.Status = MaintenanceStatusInProgress
	assert.False(t, record.Overdue(now))
}

func TestAlertTransitions(t *testing.T) {
	assert.True(t, AlertStatusActive.CanTransitionTo(AlertStatusAcknowledged))
	assert.True(t, AlertStatusActive.CanTransitionTo(AlertStatusResolved))
	assert.True(t, AlertStatusAcknowledged.CanTransitionTo(AlertStatusResolved))
	assert.True(t, AlertStatusAcknowledged.CanTransitionTo(AlertStatusDismissed))

	assert.False(t, AlertStatusAcknowledged.CanTransitionTo(AlertStatusActive))
	assert.False(t, AlertStatusResolved.CanTransitionTo(AlertStatusDismissed))
	assert.False(t, AlertStatusDismissed.CanTransitionTo(AlertStatusResolved))
	assert.False(t, AlertStatusExpired.CanTransitionTo(AlertStatusAcknowledged))
}

func TestAlertExpiryDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&Alert{Status: AlertStatusActive}).ExpiryDue(now))
	assert.True(t, (&Alert{Status: AlertStatusActive, ExpiresAt: &past}).ExpiryDue(now))
	assert.True(t, (&Alert{Status: AlertStatusAcknowledged, ExpiresAt: &past}).ExpiryDue(now))
	assert.False(t, (&Alert{Status: AlertStatusActive, ExpiresAt: &future}).ExpiryDue(now))
	assert.False(t, (&Alert{Status: AlertStatusResolved, ExpiresAt: &past}).ExpiryDue(now))
	assert.True(t, (&Alert{Status: AlertStatusActive, ExpiresAt: &now}).ExpiryDue(now))
}

func TestActorLockout(t *testing.T) {
	now := time.Now()
	actor := &Actor{}

	for i := 0; i < 4; i++ {
		actor.RegisterFailedLogin(now, 5, 15*time.Minute)
		assert.False(t, actor.Locked(now))
	}

	actor.RegisterFailedLogin(now, 5, 15*time.Minute)
	assert.True(t, actor.Locked(now))
	assert.Equal(t, 5, actor.FailedAttempts)

	assert.False(t, actor.Locked(now.Add(16*time.Minute)))

	actor.RegisterSuccessfulLogin()
	assert.False(t, actor.Locked(now))
	assert.Equal(t, 0, actor.FailedAttempts)
	assert.Nil(t, actor.LockUntil)
}
