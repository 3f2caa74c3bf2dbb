package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"
	"github.com/AriBaderkhan/seraj-store/internal/testutil"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPublisher records receipts instead of queueing them.
type stubPublisher struct {
	mu       sync.Mutex
	receipts []dto.Receipt
	fail     bool
}

func (p *stubPublisher) EnqueueReceipt(_ context.Context, r dto.Receipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("redis unavailable")
	}
	p.receipts = append(p.receipts, r)
	return nil
}

var _ ReceiptPublisher = (*stubPublisher)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	db         *gorm.DB
	categoryID uuid.UUID
	brandID    uuid.UUID

	itemRepo   repository.ItemRepository
	deviceRepo repository.DeviceRepository
	movements  repository.StockMovementRepository
	reconciler *StockReconciler
	publisher  *stubPublisher
	registry   *prometheus.Registry

	items ItemService
	units UnitService
	cart  CartService
	sales SaleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	catID, brandID := testutil.Catalog(t, db)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	items := repository.NewItemRepository(db)
	purchases := repository.NewPurchaseRepository(db)
	devices := repository.NewDeviceRepository(db)
	batches := repository.NewBatchRepository(db)
	cart := repository.NewCartRepository(db)
	sales := repository.NewSaleRepository(db)
	movements := repository.NewStockMovementRepository(db)
	catalog := repository.NewCatalogRepository(db)

	reconciler := NewStockReconciler(items, devices, batches, sales, movements, m)
	pub := &stubPublisher{}

	return &fixture{
		db:         db,
		categoryID: catID,
		brandID:    brandID,
		itemRepo:   items,
		deviceRepo: devices,
		movements:  movements,
		reconciler: reconciler,
		publisher:  pub,
		registry:   reg,
		items:      NewItemService(items, purchases, devices, batches, cart, movements, catalog, reconciler),
		units:      NewUnitService(items, devices, batches, purchases, reconciler),
		cart:       NewCartService(cart, items, devices),
		sales: NewSaleService(sales, cart, items, devices, batches, reconciler, pub, m,
			StoreInfo{Name: "Seraj Phone", Address: "Naz Naz Street"}),
	}
}

// phone creates a serialized item with one in-stock device.
func (f *fixture) phone(t *testing.T, name, imei, price string) *dto.PurchaseResponse {
	t.Helper()
	resp, err := f.items.CreateItem(context.Background(), "admin", dto.CreateItemRequest{
		Name:       name,
		BrandID:    f.brandID.String(),
		CategoryID: f.categoryID.String(),
		Mode:       model.ModeSerialized,
		Device: &dto.DeviceIntake{
			IMEI1:         imei,
			PurchasePrice: testutil.Dec(t, price).Sub(testutil.Dec(t, "50")),
			SellingPrice:  testutil.Dec(t, price),
			WarrantyMonth: testutil.Ptr(12),
		},
	})
	require.NoError(t, err)
	return resp
}

// accessory creates a pooled item with one batch line of qty units.
func (f *fixture) accessory(t *testing.T, name string, qty int, sellPrice string) *dto.PurchaseResponse {
	t.Helper()
	resp, err := f.items.CreateItem(context.Background(), "admin", dto.CreateItemRequest{
		Name:       name,
		BrandID:    f.brandID.String(),
		CategoryID: f.categoryID.String(),
		Mode:       model.ModePooled,
		Batch: &dto.BatchIntake{
			Qty:           qty,
			UnitCost:      testutil.Dec(t, "1.00"),
			UnitSellPrice: testutil.Dec(t, sellPrice),
		},
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) stock(t *testing.T, itemID string) int {
	t.Helper()
	item, err := f.itemRepo.FindByID(context.Background(), nil, uuid.MustParse(itemID))
	require.NoError(t, err)
	return item.StockQty
}

func (f *fixture) addLine(t *testing.T, itemID string, imei *string, qty int, price string) {
	t.Helper()
	_, err := f.cart.AddLine(context.Background(), dto.AddCartLineRequest{
		ItemID:       itemID,
		IMEI:         imei,
		Qty:          qty,
		SellingPrice: testutil.Dec(t, price),
	})
	require.NoError(t, err)
}

func (f *fixture) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
