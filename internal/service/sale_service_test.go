package service

import (
	"context"
	"testing"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"
	"github.com/AriBaderkhan/seraj-store/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imeiB = "123456789012345"

func TestCreateSale_MixedCartAndStaleRetry(t *testing.T) {
	f := newFixture(t)
	a := f.accessory(t, "Case A", 5, "10.00")
	b := f.phone(t, "Phone B", imeiB, "850.00")

	f.addLine(t, a.Item.ID, nil, 3, "10.00")
	f.addLine(t, b.Item.ID, testutil.Ptr(imeiB), 1, "850.00")

	resp, err := f.sales.CreateSale(context.Background(), "clerk-1", dto.CreateSaleRequest{
		TotalPaid: testutil.Dec(t, "100"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, f.stock(t, a.Item.ID))
	assert.Equal(t, 0, f.stock(t, b.Item.ID))

	dev, err := f.deviceRepo.FindByID(context.Background(), nil, uuid.MustParse(b.Device.ID))
	require.NoError(t, err)
	assert.Equal(t, model.DeviceSold, dev.Status)

	cart, err := f.cart.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	sale := resp.Sale
	assert.Equal(t, "Walk-in", sale.CustomerName)
	assert.Equal(t, "cash", sale.PaymentMethod)
	require.NotNil(t, sale.SoldBy)
	assert.Equal(t, "clerk-1", *sale.SoldBy)
	assert.True(t, sale.TotalPaid.Equal(testutil.Dec(t, "100")))
	assert.True(t, sale.TotalAmount.Equal(testutil.Dec(t, "880")))
	require.Len(t, sale.Lines, 2)

	// serialized lines are settled first
	phoneLine, caseLine := sale.Lines[0], sale.Lines[1]
	assert.Equal(t, b.Item.ID, phoneLine.ItemID)
	require.NotNil(t, phoneLine.IMEI)
	assert.Equal(t, imeiB, *phoneLine.IMEI)
	require.NotNil(t, phoneLine.WarrantyStart)
	require.NotNil(t, phoneLine.WarrantyEnd)
	assert.Equal(t, phoneLine.WarrantyStart.AddDate(0, 12, 0), *phoneLine.WarrantyEnd)
	assert.Equal(t, 3, caseLine.Qty)
	assert.True(t, caseLine.UnitPrice.Equal(testutil.Dec(t, "10")))

	// receipt handed off after commit
	require.Len(t, f.publisher.receipts, 1)
	receipt := f.publisher.receipts[0]
	assert.Equal(t, "Seraj Phone", receipt.StoreName)
	assert.Equal(t, sale.ID, receipt.SaleID)
	assert.Len(t, receipt.Lines, 2)
	assert.Equal(t, receipt, resp.Receipt)
	assert.Equal(t, float64(1), f.counter(t, "store_sales_finalized_total"))

	// stale retry with the same selection
	f.addLine(t, a.Item.ID, nil, 3, "10.00")
	f.addLine(t, b.Item.ID, testutil.Ptr(imeiB), 1, "850.00")

	_, err = f.sales.CreateSale(context.Background(), "clerk-1", dto.CreateSaleRequest{
		TotalPaid: testutil.Dec(t, "100"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.True(t, apierror.IsReason(err, apierror.ReasonItemAlreadySold))
	assert.Equal(t, 2, f.stock(t, a.Item.ID))
	assert.Equal(t, float64(1), f.counter(t, "store_sale_failures_total"))

	var sales int64
	require.NoError(t, f.db.Model(&model.Sale{}).Count(&sales).Error)
	assert.EqualValues(t, 1, sales)
}

func TestCreateSale_RollsBackWhenALaterLineFails(t *testing.T) {
	f := newFixture(t)
	a := f.accessory(t, "Glass", 10, "5")
	c := f.accessory(t, "Stand", 2, "15")

	f.addLine(t, a.Item.ID, nil, 1, "5")
	f.addLine(t, a.Item.ID, nil, 1, "5")
	f.addLine(t, c.Item.ID, nil, 10, "15")
	f.addLine(t, a.Item.ID, nil, 1, "5")
	movementsBefore := f.counter(t, "store_stock_movements_total")

	_, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficientStock))
	assert.Equal(t, movementsBefore, f.counter(t, "store_stock_movements_total"))

	assert.Equal(t, 10, f.stock(t, a.Item.ID))
	assert.Equal(t, 2, f.stock(t, c.Item.ID))

	var sales, saleLines int64
	require.NoError(t, f.db.Model(&model.Sale{}).Count(&sales).Error)
	require.NoError(t, f.db.Model(&model.SaleLine{}).Count(&saleLines).Error)
	assert.Zero(t, sales)
	assert.Zero(t, saleLines)

	var cartLines int64
	require.NoError(t, f.db.Model(&model.CartLine{}).Count(&cartLines).Error)
	assert.EqualValues(t, 4, cartLines)

	aID := uuid.MustParse(a.Item.ID)
	movs, _, err := f.movements.List(context.Background(), repository.StockMovementFilter{ItemID: &aID, Kind: model.MovementSale})
	require.NoError(t, err)
	assert.Empty(t, movs)

	assert.Empty(t, f.publisher.receipts)
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	a := f.accessory(t, "Glass", 2, "5")
	f.addLine(t, a.Item.ID, nil, 3, "5")

	_, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.Error(t, err)
	e, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, apierror.KindInsufficientStock, e.Kind)
	assert.Contains(t, e.Message, "Glass")
	assert.Equal(t, 2, f.stock(t, a.Item.ID))
}

func TestCreateSale_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonCartEmpty))
}

func TestCreateSale_ReturnedDeviceCannotBeSold(t *testing.T) {
	f := newFixture(t)
	b := f.phone(t, "Phone", "352099001700001", "500")
	f.addLine(t, b.Item.ID, testutil.Ptr("352099001700001"), 1, "500")

	returned := model.DeviceReturned
	_, err := f.units.UpdateDevice(context.Background(), "clerk", uuid.MustParse(b.Device.ID), dto.UpdateDeviceRequest{Status: &returned})
	require.NoError(t, err)

	_, err = f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.Error(t, err)
	assert.True(t, apierror.IsReason(err, apierror.ReasonItemAlreadySold))
}

func TestCreateSale_UnknownIMEIForItem(t *testing.T) {
	f := newFixture(t)
	b := f.phone(t, "Phone", "352099001700002", "500")
	f.addLine(t, b.Item.ID, testutil.Ptr("352099001799999"), 1, "500")

	_, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
	assert.True(t, apierror.IsReason(err, apierror.ReasonImeiNotFound))
}

func TestCreateSale_ExplicitTotalAndCustomer(t *testing.T) {
	f := newFixture(t)
	a := f.accessory(t, "Glass", 5, "5")
	f.addLine(t, a.Item.ID, nil, 2, "5")

	resp, err := f.sales.CreateSale(context.Background(), "", dto.CreateSaleRequest{
		CustomerName:  testutil.Ptr("Karwan"),
		TotalAmount:   testutil.Ptr(testutil.Dec(t, "8")),
		TotalPaid:     testutil.Dec(t, "8"),
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karwan", resp.Sale.CustomerName)
	assert.Equal(t, "card", resp.Sale.PaymentMethod)
	assert.Nil(t, resp.Sale.SoldBy)
	assert.True(t, resp.Sale.TotalAmount.Equal(testutil.Dec(t, "8")))
}

func TestCreateSale_ReceiptFailureDoesNotFailSale(t *testing.T) {
	f := newFixture(t)
	f.publisher.fail = true
	a := f.accessory(t, "Glass", 5, "5")
	f.addLine(t, a.Item.ID, nil, 1, "5")

	resp, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Sale.ID)
	assert.Equal(t, 4, f.stock(t, a.Item.ID))
	assert.Equal(t, float64(1), f.counter(t, "store_receipt_jobs_total"))
}

func TestSaleReadsAndCorrections(t *testing.T) {
	f := newFixture(t)
	a := f.accessory(t, "Glass", 5, "5")
	f.addLine(t, a.Item.ID, nil, 1, "5")
	created, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.NoError(t, err)
	saleID := uuid.MustParse(created.Sale.ID)

	got, err := f.sales.GetSale(context.Background(), saleID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)

	list, err := f.sales.ListSales(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	updated, err := f.sales.UpdateSale(context.Background(), saleID, dto.UpdateSaleRequest{
		CustomerName: testutil.Ptr("Dara"),
		TotalPaid:    testutil.Ptr(testutil.Dec(t, "5")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dara", updated.CustomerName)
	assert.True(t, updated.TotalPaid.Equal(testutil.Dec(t, "5")))

	_, err = f.sales.UpdateSale(context.Background(), saleID, dto.UpdateSaleRequest{
		TotalAmount: testutil.Ptr(testutil.Dec(t, "-1")),
	})
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	require.NoError(t, f.sales.DeleteSale(context.Background(), saleID))
	_, err = f.sales.GetSale(context.Background(), saleID)
	assert.True(t, apierror.IsReason(err, apierror.ReasonSaleNotFound))

	// deleting a sale does not restock
	assert.Equal(t, 4, f.stock(t, a.Item.ID))

	err = f.sales.DeleteSale(context.Background(), saleID)
	assert.True(t, apierror.IsReason(err, apierror.ReasonSaleNotFound))
	_, err = f.sales.UpdateSale(context.Background(), uuid.New(), dto.UpdateSaleRequest{CustomerName: testutil.Ptr("x")})
	assert.True(t, apierror.IsReason(err, apierror.ReasonSaleNotFound))
}

func TestLookup(t *testing.T) {
	f := newFixture(t)
	b := f.phone(t, "Galaxy A55", "354612345678901", "420")
	f.accessory(t, "Galaxy buds", 4, "60")

	hits, err := f.sales.Lookup(context.Background(), "354612345678901")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "device", hits[0].Kind)
	assert.Equal(t, b.Item.ID, hits[0].ItemID)
	assert.Equal(t, 1, hits[0].Stock)
	assert.True(t, hits[0].Price.Equal(testutil.Dec(t, "420")))

	hits, err = f.sales.Lookup(context.Background(), "galaxy")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "product", h.Kind)
		switch h.ItemName {
		case "Galaxy A55":
			assert.Equal(t, 1, h.Stock)
		case "Galaxy buds":
			assert.Equal(t, 4, h.Stock)
			assert.True(t, h.Price.Equal(testutil.Dec(t, "60")))
		}
	}

	hits, err = f.sales.Lookup(context.Background(), "999999999999999")
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = f.sales.Lookup(context.Background(), "  ")
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestCreateSale_WarrantyWindowUsesClock(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	f.sales.(*saleService).now = func() time.Time { return fixed }

	b := f.phone(t, "Phone", "352099001700003", "500")
	f.addLine(t, b.Item.ID, testutil.Ptr("352099001700003"), 1, "500")

	resp, err := f.sales.CreateSale(context.Background(), "clerk", dto.CreateSaleRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Sale.Lines, 1)
	assert.Equal(t, fixed, *resp.Sale.Lines[0].WarrantyStart)
	assert.Equal(t, fixed.AddDate(0, 12, 0), *resp.Sale.Lines[0].WarrantyEnd)
}
