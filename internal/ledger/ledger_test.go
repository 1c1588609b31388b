package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	slots map[string]Slot
}

func newMemStore() *memStore {
	return &memStore{slots: make(map[string]Slot)}
}

func (s *memStore) Slot(_ context.Context, res Resource) (Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[res.key()], nil
}

func (s *memStore) SetSlot(_ context.Context, res Resource, slot Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[res.key()] = slot
	return nil
}

func TestClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	l := New()
	store := newMemStore()

	vehicle := Resource{Kind: KindVehicle, ID: uuid.New()}
	driver := Resource{Kind: KindDriver, ID: uuid.New()}
	trip := Holder{Kind: HolderTrip, ID: uuid.New()}

	require.NoError(t, l.Claim(ctx, store, trip, vehicle, driver))

	slot, err := store.Slot(ctx, vehicle)
	require.NoError(t, err)
	assert.True(t, slot.HeldBy(trip))

	// Claiming again with the same holder is not an error.
	require.NoError(t, l.Claim(ctx, store, trip, vehicle, driver))

	// A second trip cannot take either resource.
	other := Holder{Kind: HolderTrip, ID: uuid.New()}
	err = l.Claim(ctx, store, other, vehicle)
	assert.ErrorIs(t, err, ErrClaimed)

	require.NoError(t, l.Release(ctx, store, trip, vehicle, driver))

	slot, err = store.Slot(ctx, vehicle)
	require.NoError(t, err)
	assert.True(t, slot.Free())

	// Released resources are reusable.
	require.NoError(t, l.Claim(ctx, store, other, vehicle, driver))
}

func TestClaimAllOrNothing(t *testing.T) {
	ctx := context.Background()
	l := New()
	store := newMemStore()

	vehicle := Resource{Kind: KindVehicle, ID: uuid.New()}
	driver := Resource{Kind: KindDriver, ID: uuid.New()}

	// Driver is already committed elsewhere.
	busy := Holder{Kind: HolderTrip, ID: uuid.New()}
	require.NoError(t, l.Claim(ctx, store, busy, driver))

	trip := Holder{Kind: HolderTrip, ID: uuid.New()}
	err := l.Claim(ctx, store, trip, vehicle, driver)
	assert.ErrorIs(t, err, ErrClaimed)

	// The vehicle claim must have been rolled back.
	slot, err := store.Slot(ctx, vehicle)
	require.NoError(t, err)
	assert.True(t, slot.Free())

	// The pre-existing driver claim is untouched.
	slot, err = store.Slot(ctx, driver)
	require.NoError(t, err)
	assert.True(t, slot.HeldBy(busy))
}

func TestReleaseIdempotentAndScoped(t *testing.T) {
	ctx := context.Background()
	l := New()
	store := newMemStore()

	vehicle := Resource{Kind: KindVehicle, ID: uuid.New()}
	trip := Holder{Kind: HolderTrip, ID: uuid.New()}

	// Releasing an unclaimed slot is a no-op.
	require.NoError(t, l.Release(ctx, store, trip, vehicle))

	require.NoError(t, l.Claim(ctx, store, trip, vehicle))
	require.NoError(t, l.Release(ctx, store, trip, vehicle))
	require.NoError(t, l.Release(ctx, store, trip, vehicle))

	// A release by a non-holder never clobbers the current claim.
	maint := Holder{Kind: HolderMaintenance, ID: uuid.New()}
	require.NoError(t, l.Claim(ctx, store, maint, vehicle))
	require.NoError(t, l.Release(ctx, store, trip, vehicle))

	slot, err := store.Slot(ctx, vehicle)
	require.NoError(t, err)
	assert.True(t, slot.HeldBy(maint))
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	ctx := context.Background()
	l := New()
	store := newMemStore()

	vehicle := Resource{Kind: KindVehicle, ID: uuid.New()}
	driver := Resource{Kind: KindDriver, ID: uuid.New()}

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			holder := Holder{Kind: HolderTrip, ID: uuid.New()}
			results <- l.Claim(ctx, store, holder, vehicle, driver)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrClaimed)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent claim must win")
}

func TestConcurrentClaimOppositeOrder(t *testing.T) {
	// Two claims touching the same pair in opposite argument order must not
	// deadlock; lock acquisition is sorted by resource key.
	ctx := context.Background()
	l := New()
	store := newMemStore()

	vehicle := Resource{Kind: KindVehicle, ID: uuid.New()}
	driver := Resource{Kind: KindDriver, ID: uuid.New()}

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- l.Claim(ctx, store, Holder{Kind: HolderTrip, ID: uuid.New()}, vehicle, driver)
	}()
	go func() {
		defer wg.Done()
		results <- l.Claim(ctx, store, Holder{Kind: HolderTrip, ID: uuid.New()}, driver, vehicle)
	}()
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}
