// Package ledger is the single source of truth for "is this resource free".
// Each vehicle and driver has one exclusive claim slot; trips and maintenance
// records hold claims for their active lifetime. Claim and release of the
// same resource are serialized through a per-resource mutex, and the slot
// reads/writes go through a SlotStore that implementations run inside the
// caller's transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type ResourceKind string

const (
	KindVehicle ResourceKind = "vehicle"
	KindDriver  ResourceKind = "driver"
)

type HolderKind string

const (
	HolderNone        HolderKind = "none"
	HolderTrip        HolderKind = "trip"
	HolderMaintenance HolderKind = "maintenance"
)

type Resource struct {
	Kind ResourceKind
	ID   uuid.UUID
}

func (r Resource) key() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// Holder identifies the trip or maintenance record claiming a resource.
type Holder struct {
	Kind HolderKind
	ID   uuid.UUID
}

// Slot is the claim state of one resource.
type Slot struct {
	HolderKind HolderKind
	HolderID   uuid.UUID
}

func (s Slot) Free() bool {
	return s.HolderKind == "" || s.HolderKind == HolderNone
}

func (s Slot) HeldBy(h Holder) bool {
	return s.HolderKind == h.Kind && s.HolderID == h.ID
}

var freeSlot = Slot{HolderKind: HolderNone}

// SlotStore reads and writes claim slots. The gorm-backed implementation
// locks the underlying row for the duration of the enclosing transaction.
type SlotStore interface {
	Slot(ctx context.Context, res Resource) (Slot, error)
	SetSlot(ctx context.Context, res Resource, slot Slot) error
}

// ErrClaimed is returned when any requested resource is already held by
// another holder.
var ErrClaimed = errors.New("resource already claimed")

// Ledger serializes claim decisions per resource id. The store passed to
// Claim/Release performs the actual slot persistence; the ledger guarantees
// no two in-process callers race on the same resource between the slot read
// and the slot write.
type Ledger struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Ledger {
	return &Ledger{locks: make(map[string]*sync.Mutex)}
}

func (l *Ledger) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// Claim acquires every requested resource for the holder, or none of them.
// Resources are locked in sorted key order so overlapping claims cannot
// deadlock. A resource already held by the same holder counts as claimed.
// On a partial failure every slot written so far is rolled back before
// ErrClaimed is returned.
func (l *Ledger) Claim(ctx context.Context, store SlotStore, holder Holder, resources ...Resource) error {
	if len(resources) == 0 {
		return nil
	}

	ordered := make([]Resource, len(resources))
	copy(ordered, resources)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key() < ordered[j].key() })

	for _, res := range ordered {
		mu := l.lockFor(res.key())
		mu.Lock()
		defer mu.Unlock()
	}

	claimed := make([]Resource, 0, len(ordered))
	for _, res := range ordered {
		slot, err := store.Slot(ctx, res)
		if err != nil {
			l.unwind(ctx, store, claimed)
			return err
		}
		if slot.HeldBy(holder) {
			continue
		}
		if !slot.Free() {
			l.unwind(ctx, store, claimed)
			return fmt.Errorf("%w: %s %s held by %s %s", ErrClaimed, res.Kind, res.ID, slot.HolderKind, slot.HolderID)
		}
		if err := store.SetSlot(ctx, res, Slot{HolderKind: holder.Kind, HolderID: holder.ID}); err != nil {
			l.unwind(ctx, store, claimed)
			return err
		}
		claimed = append(claimed, res)
	}

	return nil
}

// Release frees every resource currently held by the holder. Releasing a
// free slot, or a slot held by somebody else, is a no-op: release must be
// idempotent and must never clobber another holder's claim.
func (l *Ledger) Release(ctx context.Context, store SlotStore, holder Holder, resources ...Resource) error {
	ordered := make([]Resource, len(resources))
	copy(ordered, resources)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key() < ordered[j].key() })

	for _, res := range ordered {
		mu := l.lockFor(res.key())
		mu.Lock()

		slot, err := store.Slot(ctx, res)
		if err != nil {
			mu.Unlock()
			return err
		}
		if slot.HeldBy(holder) {
			if err := store.SetSlot(ctx, res, freeSlot); err != nil {
				mu.Unlock()
				return err
			}
		}
		mu.Unlock()
	}

	return nil
}

// unwind frees slots written during a failed multi-resource claim. The
// caller still holds the per-resource mutexes.
func (l *Ledger) unwind(ctx context.Context, store SlotStore, claimed []Resource) {
	for i := len(claimed) - 1; i >= 0; i-- {
		_ = store.SetSlot(ctx, claimed[i], freeSlot)
	}
}
