package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultCustomerName  = "Walk-in"
	defaultPaymentMethod = "cash"
	lookupLimit          = 20
	imeiMinLookupLen     = 9
)

// ReceiptPublisher hands a finalized sale to the document renderer.
type ReceiptPublisher interface {
	EnqueueReceipt(ctx context.Context, r dto.Receipt) error
}

// StoreInfo is printed on every receipt.
type StoreInfo struct {
	Name    string
	Address string
}

type SaleService interface {
	CreateSale(ctx context.Context, actor string, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	Lookup(ctx context.Context, query string) ([]dto.LookupResult, error)
}

type saleService struct {
	sales      repository.SaleRepository
	cart       repository.CartRepository
	items      repository.ItemRepository
	devices    repository.DeviceRepository
	batches    repository.BatchRepository
	reconciler *StockReconciler
	publisher  ReceiptPublisher
	metrics    *metrics.Metrics
	store      StoreInfo
	now        func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	cart repository.CartRepository,
	items repository.ItemRepository,
	devices repository.DeviceRepository,
	batches repository.BatchRepository,
	reconciler *StockReconciler,
	publisher ReceiptPublisher,
	m *metrics.Metrics,
	store StoreInfo,
) SaleService {
	return &saleService{
		sales:      sales,
		cart:       cart,
		items:      items,
		devices:    devices,
		batches:    batches,
		reconciler: reconciler,
		publisher:  publisher,
		metrics:    m,
		store:      store,
		now:        time.Now,
	}
}

// ── CreateSale ───────────────────────────────────────────────────────────────
// One transaction:
//   1. insert the sale header
//   2. read the cart; serialized lines are settled before pooled ones
//   3. serialized: in_stock → sold (conditional update), warranty window
//      pooled: locked stock check and decrement at the latest batch price
//   4. insert sale lines, recount touched serialized items
//   5. fill total_amount when not given, clear the cart
// After commit the receipt is handed off (best-effort).

func (s *saleService) CreateSale(ctx context.Context, actor string, req dto.CreateSaleRequest) (*dto.CreateSaleResponse, error) {
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return nil, apierror.Validation("", "invalid sale", map[string]string{"total_amount": "min"})
	}

	customer := defaultCustomerName
	if req.CustomerName != nil && strings.TrimSpace(*req.CustomerName) != "" {
		customer = strings.TrimSpace(*req.CustomerName)
	}
	method := defaultPaymentMethod
	if strings.TrimSpace(req.PaymentMethod) != "" {
		method = strings.TrimSpace(req.PaymentMethod)
	}

	by := actorPtr(actor)
	sale := model.Sale{
		CustomerName:  customer,
		TotalAmount:   decimal.Zero,
		TotalPaid:     req.TotalPaid,
		PaymentMethod: method,
		SoldBy:        by,
	}
	if req.TotalAmount != nil {
		sale.TotalAmount = *req.TotalAmount
	}
	now := s.now()

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.Create(ctx, tx, &sale); err != nil {
			return err
		}

		lines, err := s.cart.Lines(ctx, tx)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apierror.Validation(apierror.ReasonCartEmpty, "cart is empty", nil)
		}

		staged, err := s.resolveItems(ctx, tx, lines)
		if err != nil {
			return err
		}

		saleLines := make([]model.SaleLine, 0, len(staged))
		touched := map[uuid.UUID]struct{}{}
		var touchedOrder []uuid.UUID
		total := decimal.Zero
		for _, st := range staged {
			var sl model.SaleLine
			switch st.item.Mode {
			case model.ModeSerialized:
				sl, err = s.sellDevice(ctx, tx, st, sale.ID, now, by)
				if _, seen := touched[st.item.ID]; !seen && err == nil {
					touched[st.item.ID] = struct{}{}
					touchedOrder = append(touchedOrder, st.item.ID)
				}
			default:
				sl, err = s.sellPooled(ctx, tx, st, sale.ID)
			}
			if err != nil {
				return err
			}
			saleLines = append(saleLines, sl)
			total = total.Add(sl.LineTotal())
		}

		if err := s.sales.CreateLines(ctx, tx, saleLines); err != nil {
			return err
		}
		for _, itemID := range touchedOrder {
			if _, err := s.reconciler.Recount(ctx, tx, itemID, movementNote{
				kind: model.MovementSale, reason: "sale", ref: &sale.ID,
			}); err != nil {
				return err
			}
		}
		if req.TotalAmount == nil {
			sale.TotalAmount = total
			if err := s.sales.SetTotalAmount(ctx, tx, sale.ID, total); err != nil {
				return err
			}
		}
		if _, err := s.cart.Clear(ctx, tx); err != nil {
			return err
		}
		sale.Lines = saleLines
		return nil
	})
	if txErr != nil {
		if e, ok := apierror.As(txErr); ok {
			s.metrics.IncSaleFailure(string(e.Kind), string(e.Reason))
		} else {
			s.metrics.IncSaleFailure("", "")
		}
		return nil, txErr
	}
	s.metrics.IncSaleFinalized()

	receipt := buildReceipt(s.store.Name, s.store.Address, &sale)
	s.publishReceipt(ctx, receipt)

	return &dto.CreateSaleResponse{Sale: saleToResponse(&sale), Receipt: receipt}, nil
}

// stagedLine is a cart line with its item resolved.
type stagedLine struct {
	line model.CartLine
	item *model.Item
}

func (s *saleService) resolveItems(ctx context.Context, tx *gorm.DB, lines []model.CartLine) ([]stagedLine, error) {
	cache := map[uuid.UUID]*model.Item{}
	staged := make([]stagedLine, 0, len(lines))
	for _, l := range lines {
		item, ok := cache[l.ItemID]
		if !ok {
			var err error
			item, err = s.items.FindByID(ctx, tx, l.ItemID)
			if err != nil {
				return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item in cart no longer exists")
			}
			cache[l.ItemID] = item
		}
		staged = append(staged, stagedLine{line: l, item: item})
	}
	sort.SliceStable(staged, func(i, j int) bool {
		return staged[i].item.Mode == model.ModeSerialized && staged[j].item.Mode != model.ModeSerialized
	})
	return staged, nil
}

func (s *saleService) sellDevice(ctx context.Context, tx *gorm.DB, st stagedLine, saleID uuid.UUID, now time.Time, by *string) (model.SaleLine, error) {
	if st.line.IMEI == nil {
		return model.SaleLine{}, apierror.NotFound(apierror.ReasonImeiNotFound, "cart line for "+st.item.Name+" has no IMEI")
	}
	imei := *st.line.IMEI
	dev, err := s.devices.FindByItemAndIMEI(ctx, tx, st.item.ID, imei)
	if err != nil {
		return model.SaleLine{}, apierror.FromStore(err, apierror.ReasonImeiNotFound, "IMEI "+imei+" not found")
	}
	if dev.Status != model.DeviceInStock {
		return model.SaleLine{}, apierror.Conflict(apierror.ReasonItemAlreadySold, "IMEI "+imei+" is already sold")
	}
	n, err := s.devices.MarkSold(ctx, tx, dev.ID, by)
	if err != nil {
		return model.SaleLine{}, err
	}
	if n == 0 {
		return model.SaleLine{}, apierror.Conflict(apierror.ReasonItemAlreadySold, "IMEI "+imei+" is already sold")
	}

	sl := model.SaleLine{
		SaleID:    saleID,
		ItemID:    st.item.ID,
		ItemName:  st.item.Name,
		Qty:       1,
		UnitPrice: dev.SellingPrice,
		IMEI:      &imei,
	}
	if dev.WarrantyMonth != nil {
		start := now
		end := now.AddDate(0, *dev.WarrantyMonth, 0)
		sl.WarrantyStart, sl.WarrantyEnd = &start, &end
	}
	return sl, nil
}

func (s *saleService) sellPooled(ctx context.Context, tx *gorm.DB, st stagedLine, saleID uuid.UUID) (model.SaleLine, error) {
	if _, err := s.reconciler.Take(ctx, tx, st.item.ID, st.line.Qty, movementNote{
		kind: model.MovementSale, reason: "sale", ref: &saleID,
	}); err != nil {
		return model.SaleLine{}, err
	}

	price := st.line.SellingPrice
	latest, err := s.batches.Latest(ctx, tx, st.item.ID)
	switch {
	case err == nil:
		price = latest.UnitSellPrice
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return model.SaleLine{}, err
	}

	return model.SaleLine{
		SaleID:    saleID,
		ItemID:    st.item.ID,
		ItemName:  st.item.Name,
		Qty:       st.line.Qty,
		UnitPrice: price,
	}, nil
}

func (s *saleService) publishReceipt(ctx context.Context, r dto.Receipt) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.EnqueueReceipt(ctx, r); err != nil {
		s.metrics.IncReceiptJob("enqueue_failed")
		log.Warn().Err(err).Str("sale_id", r.SaleID).Msg("receipt hand-off failed")
		return
	}
	s.metrics.IncReceiptJob("enqueued")
}

// ── Reads & corrections ──────────────────────────────────────────────────────

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	sales, total, err := s.sales.List(ctx, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonSaleNotFound, "sale not found")
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

// UpdateSale corrects header fields only. Lines and inventory are untouched.
func (s *saleService) UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	invalid := map[string]string{}
	checkNonNegative(invalid, "total_amount", req.TotalAmount)
	checkNonNegative(invalid, "total_paid", req.TotalPaid)
	if err := fieldError("", "invalid sale correction", invalid); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.CustomerName != nil {
		fields["customer_name"] = strings.TrimSpace(*req.CustomerName)
	}
	if req.TotalAmount != nil {
		fields["total_amount"] = *req.TotalAmount
	}
	if req.TotalPaid != nil {
		fields["total_paid"] = *req.TotalPaid
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = strings.TrimSpace(*req.PaymentMethod)
	}
	if len(fields) > 0 {
		n, err := s.sales.Update(ctx, nil, id, fields)
		if err != nil {
			return nil, apierror.FromStore(err, apierror.ReasonSaleNotFound, "sale not found")
		}
		if n == 0 {
			return nil, apierror.NotFound(apierror.ReasonSaleNotFound, "sale not found")
		}
	}
	return s.GetSale(ctx, id)
}

// DeleteSale removes the sale and its lines. Sold devices stay sold and
// pooled stock is not restored; use ReconcileItem to rebuild pooled stock.
func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		n, err := s.sales.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apierror.NotFound(apierror.ReasonSaleNotFound, "sale not found")
		}
		return nil
	})
}

// ── Lookup ───────────────────────────────────────────────────────────────────
// A long all-digit query is an IMEI scan; anything else is a product search.

func (s *saleService) Lookup(ctx context.Context, query string) ([]dto.LookupResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, apierror.Validation("", "query is required", map[string]string{"q": "required"})
	}
	if len(q) >= imeiMinLookupLen && isDigits(q) {
		return s.lookupIMEI(ctx, q)
	}
	return s.lookupProducts(ctx, q)
}

func (s *saleService) lookupIMEI(ctx context.Context, imei string) ([]dto.LookupResult, error) {
	dev, err := s.devices.FindInStockByIMEI(ctx, imei)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []dto.LookupResult{}, nil
	}
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	item, err := s.items.FindByID(ctx, nil, dev.ItemID)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
	}
	devID := dev.ID.String()
	return []dto.LookupResult{{
		Kind:     "device",
		ItemID:   item.ID.String(),
		ItemName: item.Name,
		Mode:     string(item.Mode),
		DeviceID: &devID,
		IMEI1:    &dev.IMEI1,
		IMEI2:    dev.IMEI2,
		SerialNo: item.SerialNo,
		Stock:    1,
		Price:    dev.SellingPrice,
	}}, nil
}

func (s *saleService) lookupProducts(ctx context.Context, q string) ([]dto.LookupResult, error) {
	items, err := s.items.Search(ctx, q, lookupLimit)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	out := make([]dto.LookupResult, 0, len(items))
	for i := range items {
		it := &items[i]
		res := dto.LookupResult{
			Kind:     "product",
			ItemID:   it.ID.String(),
			ItemName: it.Name,
			Mode:     string(it.Mode),
			SerialNo: it.SerialNo,
			Stock:    it.StockQty,
			Price:    decimal.Zero,
		}
		if it.Mode == model.ModeSerialized {
			n, err := s.devices.CountInStock(ctx, nil, it.ID)
			if err != nil {
				return nil, apierror.Persistence(err)
			}
			res.Stock = int(n)
			if dev, err := s.devices.Latest(ctx, nil, it.ID); err == nil {
				res.Price = dev.SellingPrice
			}
		} else if line, err := s.batches.Latest(ctx, nil, it.ID); err == nil {
			res.Price = line.UnitSellPrice
		}
		out = append(out, res)
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
