package service

import (
	"context"
	"fmt"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitService corrects or removes individual device units and batch lines.
type UnitService interface {
	UpdateDevice(ctx context.Context, actor string, deviceID uuid.UUID, req dto.UpdateDeviceRequest) (*dto.DeviceResponse, error)
	DeleteDevice(ctx context.Context, deviceID uuid.UUID, reconcile bool) (*dto.DeleteUnitResponse, error)
	UpdateBatchLine(ctx context.Context, lineID uuid.UUID, req dto.UpdateBatchLineRequest) (*dto.BatchLineResponse, error)
	DeleteBatchLine(ctx context.Context, lineID uuid.UUID) (*dto.DeleteUnitResponse, error)
	ReconcileItem(ctx context.Context, itemID uuid.UUID) (*dto.ReconcileResponse, error)
}

type unitService struct {
	items      repository.ItemRepository
	devices    repository.DeviceRepository
	batches    repository.BatchRepository
	purchases  repository.PurchaseRepository
	reconciler *StockReconciler
}

func NewUnitService(
	items repository.ItemRepository,
	devices repository.DeviceRepository,
	batches repository.BatchRepository,
	purchases repository.PurchaseRepository,
	reconciler *StockReconciler,
) UnitService {
	return &unitService{
		items:      items,
		devices:    devices,
		batches:    batches,
		purchases:  purchases,
		reconciler: reconciler,
	}
}

// UpdateDevice applies a partial update. Status may only move from in_stock
// to returned; a status change recounts the item.
func (s *unitService) UpdateDevice(ctx context.Context, actor string, deviceID uuid.UUID, req dto.UpdateDeviceRequest) (*dto.DeviceResponse, error) {
	fields := map[string]string{}
	checkNonNegative(fields, "purchase_price", req.PurchasePrice)
	checkNonNegative(fields, "selling_price", req.SellingPrice)
	if req.IMEI1 != nil && req.IMEI2 != nil && *req.IMEI1 == *req.IMEI2 {
		fields["imei2"] = "must differ from imei1"
	}
	if err := fieldError("", "invalid device correction", fields); err != nil {
		return nil, err
	}

	by := actorPtr(actor)
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		dev, err := s.devices.FindByID(ctx, tx, deviceID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonDeviceNotFound, "device not found")
		}

		statusChanged := false
		if req.Status != nil && *req.Status != dev.Status {
			if dev.Status != model.DeviceInStock || *req.Status != model.DeviceReturned {
				return apierror.Conflict(apierror.ReasonInvalidStatusTransition,
					fmt.Sprintf("device cannot move from %s to %s", dev.Status, *req.Status))
			}
			statusChanged = true
		}

		for _, imei := range []*string{req.IMEI1, req.IMEI2} {
			if imei == nil {
				continue
			}
			taken, err := s.devices.IMEITaken(ctx, tx, *imei, dev.ID)
			if err != nil {
				return err
			}
			if taken {
				return apierror.Conflict(apierror.ReasonImeiAlreadyRegistered,
					fmt.Sprintf("IMEI %s is already registered", *imei))
			}
		}

		patch := devicePatch(req)
		if statusChanged {
			patch["status"] = *req.Status
		}
		if len(patch) > 0 {
			patch["updated_by"] = by
			if err := s.devices.Update(ctx, tx, dev.ID, patch); err != nil {
				return imeiConflict(err)
			}
		}
		if req.PurchaseNotes != nil {
			if err := s.purchases.UpdateNotes(ctx, tx, dev.PurchaseBatchID, req.PurchaseNotes); err != nil {
				return err
			}
		}
		if statusChanged {
			_, err := s.reconciler.Recount(ctx, tx, dev.ItemID, movementNote{
				kind: model.MovementCorrection, reason: "device returned", ref: &dev.ID,
			})
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	dev, err := s.devices.FindByID(ctx, nil, deviceID)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonDeviceNotFound, "device not found")
	}
	resp := deviceToResponse(dev)
	return &resp, nil
}

// DeleteDevice removes one unit. Stock is left as-is unless reconcile is set,
// in which case the item is recounted in the same transaction.
func (s *unitService) DeleteDevice(ctx context.Context, deviceID uuid.UUID, reconcile bool) (*dto.DeleteUnitResponse, error) {
	var resp dto.DeleteUnitResponse
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		dev, err := s.devices.FindByID(ctx, tx, deviceID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonDeviceNotFound, "device not found")
		}
		if _, err := s.devices.Delete(ctx, tx, dev.ID); err != nil {
			return err
		}
		resp = dto.DeleteUnitResponse{ID: dev.ID.String(), ItemID: dev.ItemID.String(), Reconciled: reconcile}

		if reconcile {
			change, err := s.reconciler.Recount(ctx, tx, dev.ItemID, movementNote{
				kind: model.MovementCorrection, reason: "device deleted", ref: &dev.ID,
			})
			if err != nil {
				return err
			}
			resp.StockAfter = change.After
			return nil
		}
		item, err := s.items.FindByID(ctx, tx, dev.ItemID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
		}
		resp.StockAfter = item.StockQty
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

// UpdateBatchLine patches a pooled batch line; stock moves by new - old qty.
func (s *unitService) UpdateBatchLine(ctx context.Context, lineID uuid.UUID, req dto.UpdateBatchLineRequest) (*dto.BatchLineResponse, error) {
	fields := map[string]string{}
	checkNonNegative(fields, "unit_cost", req.UnitCost)
	checkNonNegative(fields, "unit_sell_price", req.UnitSellPrice)
	if err := fieldError("", "invalid batch line correction", fields); err != nil {
		return nil, err
	}

	deps := &variantDeps{devices: s.devices, batches: s.batches, reconciler: s.reconciler}
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		line, err := s.batches.FindByID(ctx, tx, lineID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonBatchLineNotFound, "batch line not found")
		}
		if err := applyBatchPatch(ctx, tx, deps, line, req.Qty, req.UnitCost, req.UnitSellPrice, req.Detail); err != nil {
			return err
		}
		if req.PurchaseNotes != nil {
			return s.purchases.UpdateNotes(ctx, tx, line.PurchaseBatchID, req.PurchaseNotes)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	line, err := s.batches.FindByID(ctx, nil, lineID)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonBatchLineNotFound, "batch line not found")
	}
	resp := batchLineToResponse(line)
	return &resp, nil
}

// DeleteBatchLine removes a batch line and takes its qty off the item's
// stock, never below zero.
func (s *unitService) DeleteBatchLine(ctx context.Context, lineID uuid.UUID) (*dto.DeleteUnitResponse, error) {
	var resp dto.DeleteUnitResponse
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		line, err := s.batches.FindByID(ctx, tx, lineID)
		if err != nil {
			return apierror.FromStore(err, apierror.ReasonBatchLineNotFound, "batch line not found")
		}
		if _, err := s.batches.Delete(ctx, tx, line.ID); err != nil {
			return err
		}
		change, err := s.reconciler.Adjust(ctx, tx, line.ItemID, -line.Qty, true, movementNote{
			kind: model.MovementBatchDelete, reason: "batch line deleted", ref: &line.ID,
		})
		if err != nil {
			return err
		}
		resp = dto.DeleteUnitResponse{
			ID:         line.ID.String(),
			ItemID:     line.ItemID.String(),
			StockAfter: change.After,
			Reconciled: true,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

// ReconcileItem rebuilds an item's stock from its ledgers.
func (s *unitService) ReconcileItem(ctx context.Context, itemID uuid.UUID) (*dto.ReconcileResponse, error) {
	var resp dto.ReconcileResponse
	txErr := runTx(ctx, s.items.DB(), func(tx *gorm.DB) error {
		change, mode, err := s.reconciler.Recompute(ctx, tx, itemID)
		if err != nil {
			return err
		}
		resp = dto.ReconcileResponse{
			ItemID:      itemID.String(),
			Mode:        mode,
			StockBefore: change.Before,
			StockAfter:  change.After,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &resp, nil
}

func devicePatch(req dto.UpdateDeviceRequest) map[string]any {
	fields := map[string]any{}
	if req.IMEI1 != nil {
		fields["imei1"] = *req.IMEI1
	}
	if req.IMEI2 != nil {
		fields["imei2"] = *req.IMEI2
	}
	if req.PurchasePrice != nil {
		fields["purchase_price"] = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		fields["selling_price"] = *req.SellingPrice
	}
	if req.WarrantyMonth != nil {
		fields["warranty_month"] = *req.WarrantyMonth
	}
	if req.Detail != nil {
		fields["detail"] = *req.Detail
	}
	return fields
}
