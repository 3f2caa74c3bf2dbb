package service

import (
	"context"
	"testing"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"
	"github.com/AriBaderkhan/seraj-store/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_SerializedHasOneInStockUnit(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "iPhone 15", "356938035643809", "1200")

	require.NotNil(t, resp.Device)
	assert.Nil(t, resp.BatchLine)
	assert.Equal(t, model.DeviceInStock, resp.Device.Status)
	assert.Equal(t, "356938035643809", resp.Device.IMEI1)
	assert.Equal(t, 1, resp.Item.StockQty)
	assert.Equal(t, resp.PurchaseBatchID, resp.Device.PurchaseBatchID)

	detail, err := f.items.GetItem(context.Background(), uuid.MustParse(resp.Item.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, detail.InStock)
	assert.Len(t, detail.Devices, 1)
}

func TestCreateItem_PooledStartsWithBatchQty(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "USB-C cable", 7, "5.00")

	require.NotNil(t, resp.BatchLine)
	assert.Nil(t, resp.Device)
	assert.Equal(t, 7, resp.Item.StockQty)
	assert.Equal(t, 7, resp.BatchLine.Qty)

	detail, err := f.items.GetItem(context.Background(), uuid.MustParse(resp.Item.ID))
	require.NoError(t, err)
	assert.Equal(t, 7, detail.InStock)
	assert.Len(t, detail.BatchLines, 1)
}

func TestCreateItem_RecordsPurchaseMovement(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Charger", 4, "9.99")

	itemID := uuid.MustParse(resp.Item.ID)
	movs, total, err := f.movements.List(context.Background(), repository.StockMovementFilter{ItemID: &itemID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.MovementPurchase, movs[0].Kind)
	assert.Equal(t, 0, movs[0].StockBefore)
	assert.Equal(t, 4, movs[0].StockAfter)
}

func TestCreateItem_DuplicateIMEIRejected(t *testing.T) {
	f := newFixture(t)
	f.phone(t, "Galaxy S24", "490154203237518", "900")

	_, err := f.items.CreateItem(context.Background(), "admin", dto.CreateItemRequest{
		Name:       "Galaxy S24 copy",
		BrandID:    f.brandID.String(),
		CategoryID: f.categoryID.String(),
		Mode:       model.ModeSerialized,
		Device: &dto.DeviceIntake{
			IMEI1:        "490154203237518",
			SellingPrice: testutil.Dec(t, "900"),
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonImeiAlreadyRegistered))
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))

	// the failed intake must not leave an item behind
	var count int64
	require.NoError(t, f.db.Model(&model.Item{}).Where("name = ?", "Galaxy S24 copy").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateItem_ModeShapeMismatch(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		req  dto.CreateItemRequest
	}{
		{"serialized without device", dto.CreateItemRequest{
			Mode:  model.ModeSerialized,
			Batch: &dto.BatchIntake{Qty: 2},
		}},
		{"pooled with device", dto.CreateItemRequest{
			Mode:   model.ModePooled,
			Device: &dto.DeviceIntake{IMEI1: "111111111111111"},
			Batch:  &dto.BatchIntake{Qty: 2},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Name = "bad"
			tc.req.BrandID = f.brandID.String()
			tc.req.CategoryID = f.categoryID.String()
			_, err := f.items.CreateItem(context.Background(), "admin", tc.req)
			require.Error(t, err)
			assert.True(t, apierror.IsKind(err, apierror.KindValidation))
			assert.True(t, apierror.IsReason(err, apierror.ReasonInvalidMode))
		})
	}
}

func TestCreateItem_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.items.CreateItem(context.Background(), "admin", dto.CreateItemRequest{
		Name:       "Case",
		BrandID:    f.brandID.String(),
		CategoryID: uuid.NewString(),
		Mode:       model.ModePooled,
		Batch:      &dto.BatchIntake{Qty: 1},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonCategoryNotFound))
}

func TestAddPurchase_SerializedRecounts(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Pixel 8", "352099001761481", "700")
	itemID := uuid.MustParse(resp.Item.ID)

	second, err := f.items.AddPurchase(context.Background(), "admin", itemID, dto.PurchaseRequest{
		Notes:  testutil.Ptr("second shipment"),
		Device: &dto.DeviceIntake{IMEI1: "352099001761499", SellingPrice: testutil.Dec(t, "720")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Item.StockQty)
	assert.NotEqual(t, resp.PurchaseBatchID, second.PurchaseBatchID)

	n, err := f.deviceRepo.CountInStock(context.Background(), nil, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(second.Item.StockQty), n)
}

func TestAddPurchase_PooledAddsQty(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Screen protector", 10, "3.00")

	second, err := f.items.AddPurchase(context.Background(), "admin", uuid.MustParse(resp.Item.ID), dto.PurchaseRequest{
		Batch: &dto.BatchIntake{Qty: 5, UnitCost: testutil.Dec(t, "0.50"), UnitSellPrice: testutil.Dec(t, "3.50")},
	})
	require.NoError(t, err)
	assert.Equal(t, 15, second.Item.StockQty)
}

func TestUpdateItem_PooledQtyCorrectionMovesStock(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Earbuds", 10, "20.00")
	itemID := uuid.MustParse(resp.Item.ID)

	updated, err := f.items.UpdateItem(context.Background(), "admin", itemID, dto.UpdateItemRequest{
		Name: testutil.Ptr("Earbuds Pro"),
		Qty:  testutil.Ptr(6),
	})
	require.NoError(t, err)
	assert.Equal(t, "Earbuds Pro", updated.Name)
	assert.Equal(t, 6, updated.StockQty)
}

func TestUpdateItem_QtyCorrectionBelowSoldUnitsRejected(t *testing.T) {
	f := newFixture(t)
	resp := f.accessory(t, "Earbuds", 5, "20.00")
	itemID := uuid.MustParse(resp.Item.ID)

	f.addLine(t, resp.Item.ID, nil, 4, "20.00")
	_, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, f.stock(t, resp.Item.ID))

	_, err = f.items.UpdateItem(context.Background(), "admin", itemID, dto.UpdateItemRequest{
		Name: testutil.Ptr("Earbuds v2"),
		Qty:  testutil.Ptr(1),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))
	assert.Equal(t, 1, f.stock(t, resp.Item.ID))

	var item model.Item
	require.NoError(t, f.db.First(&item, "id = ?", itemID).Error)
	assert.Equal(t, "Earbuds", item.Name)
}

func TestUpdateItem_RejectsFieldsOfOtherMode(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Nokia", "353918050000001", "150")

	_, err := f.items.UpdateItem(context.Background(), "admin", uuid.MustParse(resp.Item.ID), dto.UpdateItemRequest{
		Qty: testutil.Ptr(3),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonInvalidMode))
}

func TestUpdateItem_SerializedPriceTargetsLatestUnit(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Redmi", "861234567890123", "200")
	itemID := uuid.MustParse(resp.Item.ID)

	_, err := f.items.UpdateItem(context.Background(), "admin", itemID, dto.UpdateItemRequest{
		SellingPrice:  testutil.Ptr(testutil.Dec(t, "210")),
		PurchaseNotes: testutil.Ptr("price corrected"),
	})
	require.NoError(t, err)

	detail, err := f.items.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	require.Len(t, detail.Devices, 1)
	assert.True(t, detail.Devices[0].SellingPrice.Equal(testutil.Dec(t, "210")))
	require.NotNil(t, detail.Devices[0].PurchaseNotes)
	assert.Equal(t, "price corrected", *detail.Devices[0].PurchaseNotes)
}

func TestDeleteItem_RemovesUnitsAndCartLines(t *testing.T) {
	f := newFixture(t)
	resp := f.phone(t, "Oppo", "867530012345678", "300")
	f.addLine(t, resp.Item.ID, testutil.Ptr("867530012345678"), 1, "300")
	itemID := uuid.MustParse(resp.Item.ID)

	require.NoError(t, f.items.DeleteItem(context.Background(), itemID))

	_, err := f.items.GetItem(context.Background(), itemID)
	assert.True(t, apierror.IsReason(err, apierror.ReasonItemNotFound))

	cart, err := f.cart.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var units int64
	require.NoError(t, f.db.Model(&model.DeviceUnit{}).Where("item_id = ?", itemID).Count(&units).Error)
	assert.Zero(t, units)

	var batches int64
	require.NoError(t, f.db.Model(&model.PurchaseBatch{}).Count(&batches).Error)
	assert.EqualValues(t, 1, batches)
}

func TestDeleteItem_NotFound(t *testing.T) {
	f := newFixture(t)
	err := f.items.DeleteItem(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestListByCategory(t *testing.T) {
	f := newFixture(t)
	f.phone(t, "iPhone 13", "356938035643001", "500")
	f.phone(t, "iPhone 14", "356938035643002", "600")
	f.accessory(t, "MagSafe case", 3, "25")

	list, err := f.items.ListByCategory(context.Background(), f.categoryID, dto.ItemFilter{Search: "iphone"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 1, list.Page)

	_, err = f.items.ListByCategory(context.Background(), uuid.New(), dto.ItemFilter{})
	assert.True(t, apierror.IsReason(err, apierror.ReasonCategoryNotFound))
}
