package service

import (
	"context"
	"fmt"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockChange is the before/after of one reconciliation.
type StockChange struct {
	ItemID uuid.UUID
	Before int
	After  int
}

// movementNote describes why stock moved; it lands in the StockMovement row.
type movementNote struct {
	kind   model.MovementKind
	reason string
	ref    *uuid.UUID
}

// StockReconciler is the only writer of Item.StockQty. Every method must be
// called with an open tx; the item row is locked for the rest of it.
type StockReconciler struct {
	items     repository.ItemRepository
	devices   repository.DeviceRepository
	batches   repository.BatchRepository
	sales     repository.SaleRepository
	movements repository.StockMovementRepository
	metrics   *metrics.Metrics
}

func NewStockReconciler(
	items repository.ItemRepository,
	devices repository.DeviceRepository,
	batches repository.BatchRepository,
	sales repository.SaleRepository,
	movements repository.StockMovementRepository,
	m *metrics.Metrics,
) *StockReconciler {
	return &StockReconciler{
		items:     items,
		devices:   devices,
		batches:   batches,
		sales:     sales,
		movements: movements,
		metrics:   m,
	}
}

// Recount sets a serialized item's stock to its number of in_stock units.
func (r *StockReconciler) Recount(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, note movementNote) (StockChange, error) {
	item, err := r.lock(ctx, tx, itemID)
	if err != nil {
		return StockChange{}, err
	}
	n, err := r.devices.CountInStock(ctx, tx, itemID)
	if err != nil {
		return StockChange{}, err
	}
	return r.set(ctx, tx, item, int(n), note)
}

// Adjust moves a pooled item's stock by delta. With floorZero the result is
// clamped at 0; without it a result below 0 fails with INSUFFICIENT_STOCK.
func (r *StockReconciler) Adjust(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta int, floorZero bool, note movementNote) (StockChange, error) {
	item, err := r.lock(ctx, tx, itemID)
	if err != nil {
		return StockChange{}, err
	}
	after := item.StockQty + delta
	if after < 0 {
		if !floorZero {
			return StockChange{}, apierror.InsufficientStock(fmt.Sprintf(
				"%s: correction would leave stock at %d", item.Name, after))
		}
		after = 0
	}
	return r.set(ctx, tx, item, after, note)
}

// Take removes qty units of a pooled item for a sale. It fails with
// INSUFFICIENT_STOCK when fewer than qty are available.
func (r *StockReconciler) Take(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int, note movementNote) (StockChange, error) {
	item, err := r.lock(ctx, tx, itemID)
	if err != nil {
		return StockChange{}, err
	}
	if qty > item.StockQty {
		return StockChange{}, apierror.InsufficientStock(
			insufficientMsg(item.Name, item.StockQty, qty))
	}
	n, err := r.items.DecrementStockIfAvailable(ctx, tx, itemID, qty)
	if err != nil {
		return StockChange{}, err
	}
	if n == 0 {
		return StockChange{}, apierror.InsufficientStock(
			insufficientMsg(item.Name, item.StockQty, qty))
	}
	change := StockChange{ItemID: itemID, Before: item.StockQty, After: item.StockQty - qty}
	if err := r.record(ctx, tx, change, note); err != nil {
		return StockChange{}, err
	}
	return change, nil
}

// Recompute rebuilds stock from the ledgers: in_stock units for serialized
// items, received minus sold quantities (floored at 0) for pooled ones.
func (r *StockReconciler) Recompute(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (StockChange, model.ItemMode, error) {
	item, err := r.lock(ctx, tx, itemID)
	if err != nil {
		return StockChange{}, "", err
	}
	note := movementNote{kind: model.MovementRecount, reason: "manual reconciliation"}

	var target int64
	switch item.Mode {
	case model.ModeSerialized:
		target, err = r.devices.CountInStock(ctx, tx, itemID)
	default:
		var received, sold int64
		if received, err = r.batches.SumQty(ctx, tx, itemID); err != nil {
			return StockChange{}, "", err
		}
		if sold, err = r.sales.SoldQty(ctx, tx, itemID); err != nil {
			return StockChange{}, "", err
		}
		target = max(received-sold, 0)
	}
	if err != nil {
		return StockChange{}, "", err
	}
	change, err := r.set(ctx, tx, item, int(target), note)
	return change, item.Mode, err
}

func (r *StockReconciler) lock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*model.Item, error) {
	item, err := r.items.FindByIDForUpdate(ctx, tx, itemID)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
	}
	return item, nil
}

func (r *StockReconciler) set(ctx context.Context, tx *gorm.DB, item *model.Item, after int, note movementNote) (StockChange, error) {
	change := StockChange{ItemID: item.ID, Before: item.StockQty, After: after}
	if change.Before == change.After {
		return change, nil
	}
	if err := r.items.SetStock(ctx, tx, item.ID, after); err != nil {
		return StockChange{}, err
	}
	if err := r.record(ctx, tx, change, note); err != nil {
		return StockChange{}, err
	}
	item.StockQty = after
	return change, nil
}

func (r *StockReconciler) record(ctx context.Context, tx *gorm.DB, change StockChange, note movementNote) error {
	mov := &model.StockMovement{
		ItemID:      change.ItemID,
		Kind:        note.kind,
		Delta:       change.After - change.Before,
		StockBefore: change.Before,
		StockAfter:  change.After,
		Reason:      note.reason,
		ReferenceID: note.ref,
	}
	if err := r.movements.Create(ctx, tx, mov); err != nil {
		return err
	}
	kind := string(note.kind)
	afterCommit(tx, func() { r.metrics.IncStockMovement(kind) })
	return nil
}
