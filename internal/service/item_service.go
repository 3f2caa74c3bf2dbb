package service

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemService interface {
	CreateItem(ctx context.Context, actor string, req dto.CreateItemRequest) (*dto.PurchaseResponse, error)
	AddPurchase(ctx context.Context, actor string, itemID uuid.UUID, req dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	UpdateItem(ctx context.Context, actor string, itemID uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*dto.ItemDetailResponse, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, filter dto.ItemFilter) (*dto.ItemListResponse, error)
}

type itemService struct {
	items     repository.ItemRepository
	purchases repository.PurchaseRepository
	cart      repository.CartRepository
	movements repository.StockMovementRepository
	catalog   repository.CatalogRepository
	variants  *variantDeps
}

func NewItemService(
	items repository.ItemRepository,
	purchases repository.PurchaseRepository,
	devices repository.DeviceRepository,
	batches repository.BatchRepository,
	cart repository.CartRepository,
	movements repository.StockMovementRepository,
	catalog repository.CatalogRepository,
	reconciler *StockReconciler,
) ItemService {
	return &itemService{
		items:     items,
		purchases: purchases,
		cart:      cart,
		movements: movements,
		catalog:   catalog,
		variants:  &variantDeps{devices: devices, batches: batches, reconciler: reconciler},
	}
}

// ── CreateItem ───────────────────────────────────────────────────────────────
// One transaction: purchase batch, item, first unit or batch line, stock.

func (s *itemService) CreateItem(ctx context.Context, actor string, req dto.CreateItemRequest) (*dto.PurchaseResponse, error) {
	categoryID, brandID, err := parseCatalogIDs(req.CategoryID, req.BrandID)
	if err != nil {
		return nil, err
	}
	variant, err := s.variants.variantFor(req.Mode)
	if err != nil {
		return nil, err
	}
	in := intake{device: req.Device, batch: req.Batch}
	if err := fieldError(apierror.ReasonInvalidMode, "payload does not match item mode", variant.checkIntake(in)); err != nil {
		return nil, err
	}

	by := actorPtr(actor)
	var (
		item  model.Item
		batch model.PurchaseBatch
		rec   received
	)
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		if err := s.checkCatalog(ctx, tx, &categoryID, &brandID); err != nil {
			return err
		}

		batch = model.PurchaseBatch{CreatedBy: by, Notes: req.PurchaseNotes}
		if err := s.purchases.Create(ctx, tx, &batch); err != nil {
			return err
		}

		item = model.Item{
			Name:       req.Name,
			BrandID:    brandID,
			CategoryID: categoryID,
			Mode:       variant.mode(),
			Details:    req.Details,
			ImagePath:  req.ImagePath,
			SerialNo:   req.SerialNo,
			Storage:    req.Storage,
			SimType:    req.SimType,
			Color:      req.Color,
			CreatedBy:  by,
			UpdatedBy:  by,
		}
		if err := s.items.Create(ctx, tx, &item); err != nil {
			return err
		}

		rec, err = variant.receive(ctx, tx, &item, batch.ID, in, by)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.purchaseResponse(ctx, item.ID, batch.ID, rec)
}

// ── AddPurchase ──────────────────────────────────────────────────────────────

func (s *itemService) AddPurchase(ctx context.Context, actor string, itemID uuid.UUID, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	item, err := s.findItem(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	variant, err := s.variants.variantFor(item.Mode)
	if err != nil {
		return nil, err
	}
	in := intake{device: req.Device, batch: req.Batch}
	if err := fieldError(apierror.ReasonInvalidMode, "payload does not match item mode", variant.checkIntake(in)); err != nil {
		return nil, err
	}

	by := actorPtr(actor)
	var (
		batch model.PurchaseBatch
		rec   received
	)
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		batch = model.PurchaseBatch{CreatedBy: by, Notes: req.Notes}
		if err := s.purchases.Create(ctx, tx, &batch); err != nil {
			return err
		}
		rec, err = variant.receive(ctx, tx, item, batch.ID, in, by)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.purchaseResponse(ctx, item.ID, batch.ID, rec)
}

// ── UpdateItem ───────────────────────────────────────────────────────────────
// Catalog fields apply to the item; price/qty corrections apply to the most
// recent unit (serialized) or batch line (pooled). Mode never changes.

func (s *itemService) UpdateItem(ctx context.Context, actor string, itemID uuid.UUID, req dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := s.findItem(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	variant, err := s.variants.variantFor(item.Mode)
	if err != nil {
		return nil, err
	}
	if err := fieldError(apierror.ReasonInvalidMode, "correction does not apply to this item mode", variant.checkCorrection(req)); err != nil {
		return nil, err
	}

	var categoryID, brandID *uuid.UUID
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.Validation("", "invalid category_id", map[string]string{"category_id": "uuid"})
		}
		categoryID = &id
	}
	if req.BrandID != nil {
		id, err := uuid.Parse(*req.BrandID)
		if err != nil {
			return nil, apierror.Validation("", "invalid brand_id", map[string]string{"brand_id": "uuid"})
		}
		brandID = &id
	}

	by := actorPtr(actor)
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		if err := s.checkCatalog(ctx, tx, categoryID, brandID); err != nil {
			return err
		}

		fields := catalogPatch(req, categoryID, brandID)
		if len(fields) > 0 {
			fields["updated_by"] = by
			if err := s.items.Update(ctx, tx, itemID, fields); err != nil {
				return err
			}
		}

		batchID, err := variant.correct(ctx, tx, item, req, by)
		if err != nil {
			return err
		}
		if req.PurchaseNotes != nil && batchID != uuid.Nil {
			return s.purchases.UpdateNotes(ctx, tx, batchID, req.PurchaseNotes)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.findItem(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	resp := itemToResponse(updated)
	return &resp, nil
}

// ── DeleteItem ───────────────────────────────────────────────────────────────
// Removes the item with its cart lines, units or batch lines and movement
// history. Purchase batches and sale lines are kept.

func (s *itemService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		item, err := s.items.FindByIDForUpdate(ctx, tx, itemID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
		}
		variant, err := s.variants.variantFor(item.Mode)
		if err != nil {
			return err
		}
		if _, err := s.cart.DeleteByItem(ctx, tx, itemID); err != nil {
			return err
		}
		if err := variant.deleteUnits(ctx, tx, itemID); err != nil {
			return err
		}
		if _, err := s.movements.DeleteByItem(ctx, tx, itemID); err != nil {
			return err
		}
		_, err = s.items.Delete(ctx, tx, itemID)
		return err
	})
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *itemService) GetItem(ctx context.Context, itemID uuid.UUID) (*dto.ItemDetailResponse, error) {
	item, err := s.findItem(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	variant, err := s.variants.variantFor(item.Mode)
	if err != nil {
		return nil, err
	}
	resp := &dto.ItemDetailResponse{ItemResponse: itemToResponse(item)}
	if err := variant.describe(ctx, item, resp); err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
	}
	return resp, nil
}

func (s *itemService) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	if _, err := s.catalog.FindCategory(ctx, nil, categoryID); err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonCategoryNotFound, "category not found")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	items, total, err := s.items.ListByCategory(ctx, categoryID, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	data := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		data = append(data, itemToResponse(&items[i]))
	}
	return &dto.ItemListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *itemService) findItem(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, tx, id)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
	}
	return item, nil
}

func (s *itemService) checkCatalog(ctx context.Context, tx *gorm.DB, categoryID, brandID *uuid.UUID) error {
	if categoryID != nil {
		if _, err := s.catalog.FindCategory(ctx, tx, *categoryID); err != nil {
			return apierror.FromStore(err, apierror.ReasonCategoryNotFound, "category not found")
		}
	}
	if brandID != nil {
		if _, err := s.catalog.FindBrand(ctx, tx, *brandID); err != nil {
			return apierror.FromStore(err, apierror.ReasonBrandNotFound, "brand not found")
		}
	}
	return nil
}

func (s *itemService) purchaseResponse(ctx context.Context, itemID, batchID uuid.UUID, rec received) (*dto.PurchaseResponse, error) {
	item, err := s.findItem(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	resp := &dto.PurchaseResponse{Item: itemToResponse(item), PurchaseBatchID: batchID.String()}
	if rec.device != nil {
		d := deviceToResponse(rec.device)
		resp.Device = &d
	}
	if rec.line != nil {
		l := batchLineToResponse(rec.line)
		resp.BatchLine = &l
	}
	return resp, nil
}

func parseCatalogIDs(categoryRaw, brandRaw string) (uuid.UUID, uuid.UUID, error) {
	fields := map[string]string{}
	categoryID, err := uuid.Parse(categoryRaw)
	if err != nil {
		fields["category_id"] = "uuid"
	}
	brandID, err := uuid.Parse(brandRaw)
	if err != nil {
		fields["brand_id"] = "uuid"
	}
	if len(fields) > 0 {
		return uuid.Nil, uuid.Nil, apierror.Validation("", "invalid catalog reference", fields)
	}
	return categoryID, brandID, nil
}

func catalogPatch(req dto.UpdateItemRequest, categoryID, brandID *uuid.UUID) map[string]any {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if categoryID != nil {
		fields["category_id"] = *categoryID
	}
	if brandID != nil {
		fields["brand_id"] = *brandID
	}
	if req.Details != nil {
		fields["details"] = *req.Details
	}
	if req.ImagePath != nil {
		fields["image_path"] = *req.ImagePath
	}
	if req.SerialNo != nil {
		fields["serial_no"] = *req.SerialNo
	}
	if req.Storage != nil {
		fields["storage"] = *req.Storage
	}
	if req.SimType != nil {
		fields["sim_type"] = *req.SimType
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	return fields
}
