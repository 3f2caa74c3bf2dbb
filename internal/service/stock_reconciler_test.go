package service

import (
	"context"
	"testing"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReconciler_RecountMatchesInStockUnits(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Phone", "356938035642001", "300")
	itemID := uuid.MustParse(resp.Item.ID)

	// a unit flipped outside the service leaves the cache stale
	require.NoError(t, f.db.Model(&model.DeviceUnit{}).Where("id = ?", resp.Device.ID).
		Update("status", model.DeviceSold).Error)
	require.Equal(t, 1, f.stock(t, resp.Item.ID))

	var change StockChange
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = f.reconciler.Recount(context.Background(), tx, itemID, movementNote{
			kind: model.MovementRecount, reason: "test",
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, change.Before)
	assert.Equal(t, 0, change.After)
	assert.Equal(t, 0, f.stock(t, resp.Item.ID))
}

func TestReconciler_NoMovementWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Phone", "356938035642002", "300")
	itemID := uuid.MustParse(resp.Item.ID)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.reconciler.Recount(context.Background(), tx, itemID, movementNote{kind: model.MovementRecount})
		return err
	})
	require.NoError(t, err)

	_, total, err := f.movements.List(context.Background(), repository.StockMovementFilter{ItemID: &itemID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "only the purchase movement is recorded")
}

func TestReconciler_TakeAndAdjust(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Cable", 3, "2")
	itemID := uuid.MustParse(resp.Item.ID)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.reconciler.Take(ctx, tx, itemID, 4, movementNote{kind: model.MovementSale})
		return err
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))
	assert.Equal(t, 3, f.stock(t, resp.Item.ID))

	err = f.db.Transaction(func(tx *gorm.DB) error {
		change, err := f.reconciler.Take(ctx, tx, itemID, 3, movementNote{kind: model.MovementSale})
		if err != nil {
			return err
		}
		assert.Equal(t, 0, change.After)
		change, err = f.reconciler.Adjust(ctx, tx, itemID, -5, true, movementNote{kind: model.MovementBatchDelete})
		if err != nil {
			return err
		}
		assert.Equal(t, 0, change.After)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.stock(t, resp.Item.ID))
	assert.Equal(t, float64(2), f.counter(t, "store_stock_movements_total"))
}

func TestReconciler_AdjustRejectsNegativeWithoutFloor(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Cable", 3, "2")
	itemID := uuid.MustParse(resp.Item.ID)

	err := runTx(context.Background(), f.db, func(tx *gorm.DB) error {
		_, err := f.reconciler.Adjust(context.Background(), tx, itemID, -4, false, movementNote{kind: model.MovementCorrection})
		return err
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))
	assert.Equal(t, 3, f.stock(t, resp.Item.ID))
}

func TestReconciler_MovementCountedOnlyOnCommit(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Cable", 5, "2")
	itemID := uuid.MustParse(resp.Item.ID)
	ctx := context.Background()
	before := f.counter(t, "store_stock_movements_total")

	err := runTx(ctx, f.db, func(tx *gorm.DB) error {
		if _, err := f.reconciler.Take(ctx, tx, itemID, 2, movementNote{kind: model.MovementSale}); err != nil {
			return err
		}
		_, err := f.reconciler.Take(ctx, tx, itemID, 9, movementNote{kind: model.MovementSale})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, before, f.counter(t, "store_stock_movements_total"))
	assert.Equal(t, 5, f.stock(t, resp.Item.ID))

	err = runTx(ctx, f.db, func(tx *gorm.DB) error {
		_, err := f.reconciler.Take(ctx, tx, itemID, 2, movementNote{kind: model.MovementSale})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, f.counter(t, "store_stock_movements_total"))
}

func TestReconciler_UnknownItem(t *testing.T) {
	f := newFixture(t)
	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, _, err := f.reconciler.Recompute(context.Background(), tx, uuid.New())
		return err
	})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonItemNotFound))
}
