package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/ledger"
	"fleet-service/internal/model"
)

// SlotStore is the gorm-backed claim slot storage for the availability
// ledger. Construct it with the enclosing transaction so slot reads take a
// row lock (SELECT ... FOR UPDATE) held until commit; the ledger's keyed
// mutex covers in-process callers, the row lock covers other processes.
//
// SetSlot also derives the availability column from the claim: a trip makes
// a vehicle in-use and a driver on-duty, maintenance makes a vehicle
// under maintenance, and a freed slot reads available again.
type SlotStore struct {
	db *gorm.DB
}

func NewSlotStore(db *gorm.DB) *SlotStore {
	return &SlotStore{db: db}
}

func (s *SlotStore) Slot(ctx context.Context, res ledger.Resource) (ledger.Slot, error) {
	switch res.Kind {
	case ledger.KindVehicle:
		var v model.Vehicle
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&v, "id = ?", res.ID).Error
		if err != nil {
			return ledger.Slot{}, err
		}
		return slotFrom(v.ClaimKind, v.ClaimID), nil

	case ledger.KindDriver:
		var d model.Driver
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&d, "id = ?", res.ID).Error
		if err != nil {
			return ledger.Slot{}, err
		}
		return slotFrom(d.ClaimKind, d.ClaimID), nil

	default:
		return ledger.Slot{}, fmt.Errorf("unknown resource kind %q", res.Kind)
	}
}

func (s *SlotStore) SetSlot(ctx context.Context, res ledger.Resource, slot ledger.Slot) error {
	updates := map[string]interface{}{
		"claim_kind": string(slot.HolderKind),
	}
	if slot.Free() {
		updates["claim_kind"] = string(ledger.HolderNone)
		updates["claim_id"] = gorm.Expr("NULL")
	} else {
		updates["claim_id"] = slot.HolderID
	}

	switch res.Kind {
	case ledger.KindVehicle:
		updates["availability"] = vehicleAvailabilityFor(slot)
		return s.db.WithContext(ctx).
			Model(&model.Vehicle{}).
			Where("id = ?", res.ID).
			Updates(updates).Error

	case ledger.KindDriver:
		updates["availability"] = driverAvailabilityFor(slot)
		return s.db.WithContext(ctx).
			Model(&model.Driver{}).
			Where("id = ?", res.ID).
			Updates(updates).Error

	default:
		return fmt.Errorf("unknown resource kind %q", res.Kind)
	}
}

func slotFrom(kind string, id *uuid.UUID) ledger.Slot {
	if kind == "" || kind == string(ledger.HolderNone) || id == nil {
		return ledger.Slot{HolderKind: ledger.HolderNone}
	}
	return ledger.Slot{HolderKind: ledger.HolderKind(kind), HolderID: *id}
}

func vehicleAvailabilityFor(slot ledger.Slot) model.VehicleAvailability {
	switch slot.HolderKind {
	case ledger.HolderTrip:
		return model.VehicleInUse
	case ledger.HolderMaintenance:
		return model.VehicleInMaintenance
	default:
		return model.VehicleAvailable
	}
}

func driverAvailabilityFor(slot ledger.Slot) model.DriverAvailability {
	if slot.HolderKind == ledger.HolderTrip {
		return model.DriverOnDuty
	}
	return model.DriverAvailable
}
