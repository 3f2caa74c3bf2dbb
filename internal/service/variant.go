package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// intake is the mode-tagged payload of a purchase: exactly one side is set.
type intake struct {
	device *dto.DeviceIntake
	batch  *dto.BatchIntake
}

// received is what an intake created.
type received struct {
	device *model.DeviceUnit
	line   *model.PooledBatchLine
}

// stockVariant is the mode-specific half of an item. Serialized and pooled
// items differ in how purchases land, how corrections apply and how stock is
// reconciled; everything else is shared.
type stockVariant interface {
	mode() model.ItemMode
	checkIntake(in intake) map[string]string
	receive(ctx context.Context, tx *gorm.DB, item *model.Item, batchID uuid.UUID, in intake, actor *string) (received, error)
	checkCorrection(req dto.UpdateItemRequest) map[string]string
	// correct applies price/qty corrections to the representative unit or line
	// and returns the purchase batch it belongs to (uuid.Nil when the item
	// has none).
	correct(ctx context.Context, tx *gorm.DB, item *model.Item, req dto.UpdateItemRequest, actor *string) (uuid.UUID, error)
	deleteUnits(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	describe(ctx context.Context, item *model.Item, out *dto.ItemDetailResponse) error
}

type variantDeps struct {
	devices    repository.DeviceRepository
	batches    repository.BatchRepository
	reconciler *StockReconciler
}

func (d *variantDeps) variantFor(mode model.ItemMode) (stockVariant, error) {
	switch mode {
	case model.ModeSerialized:
		return serializedVariant{d}, nil
	case model.ModePooled:
		return pooledVariant{d}, nil
	}
	return nil, apierror.Validation(apierror.ReasonInvalidMode,
		fmt.Sprintf("unknown item mode %q", mode), map[string]string{"mode": "oneof"})
}

// ── Serialized ───────────────────────────────────────────────────────────────

type serializedVariant struct{ *variantDeps }

func (serializedVariant) mode() model.ItemMode { return model.ModeSerialized }

func (serializedVariant) checkIntake(in intake) map[string]string {
	fields := map[string]string{}
	if in.device == nil {
		fields["device"] = "required"
	}
	if in.batch != nil {
		fields["batch"] = "not allowed for serialized items"
	}
	if in.device != nil && in.device.IMEI2 != nil && *in.device.IMEI2 == in.device.IMEI1 {
		fields["device.imei2"] = "must differ from imei1"
	}
	return fields
}

func (v serializedVariant) receive(ctx context.Context, tx *gorm.DB, item *model.Item, batchID uuid.UUID, in intake, actor *string) (received, error) {
	dev := in.device
	for _, imei := range nonEmpty(dev.IMEI1, dev.IMEI2) {
		taken, err := v.devices.IMEITaken(ctx, tx, imei, uuid.Nil)
		if err != nil {
			return received{}, err
		}
		if taken {
			return received{}, apierror.Conflict(apierror.ReasonImeiAlreadyRegistered,
				fmt.Sprintf("IMEI %s is already registered", imei))
		}
	}
	unit := &model.DeviceUnit{
		ItemID:          item.ID,
		PurchaseBatchID: batchID,
		IMEI1:           dev.IMEI1,
		IMEI2:           dev.IMEI2,
		PurchasePrice:   dev.PurchasePrice,
		SellingPrice:    dev.SellingPrice,
		WarrantyMonth:   dev.WarrantyMonth,
		Detail:          dev.Detail,
		Status:          model.DeviceInStock,
		CreatedBy:       actor,
		UpdatedBy:       actor,
	}
	if err := v.devices.Create(ctx, tx, unit); err != nil {
		return received{}, imeiConflict(err)
	}
	if _, err := v.reconciler.Recount(ctx, tx, item.ID, movementNote{
		kind: model.MovementPurchase, reason: "device received", ref: &unit.ID,
	}); err != nil {
		return received{}, err
	}
	return received{device: unit}, nil
}

func (serializedVariant) checkCorrection(req dto.UpdateItemRequest) map[string]string {
	fields := map[string]string{}
	if req.Qty != nil {
		fields["qty"] = "not allowed for serialized items"
	}
	if req.UnitCost != nil {
		fields["unit_cost"] = "not allowed for serialized items"
	}
	if req.UnitSellPrice != nil {
		fields["unit_sell_price"] = "not allowed for serialized items"
	}
	checkNonNegative(fields, "purchase_price", req.PurchasePrice)
	checkNonNegative(fields, "selling_price", req.SellingPrice)
	return fields
}

func (v serializedVariant) correct(ctx context.Context, tx *gorm.DB, item *model.Item, req dto.UpdateItemRequest, actor *string) (uuid.UUID, error) {
	unit, err := v.devices.Latest(ctx, tx, item.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if req.PurchasePrice != nil || req.SellingPrice != nil || req.WarrantyMonth != nil || req.PurchaseNotes != nil {
			return uuid.Nil, apierror.NotFound(apierror.ReasonDeviceNotFound, "item has no device to correct")
		}
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	fields := map[string]any{}
	if req.PurchasePrice != nil {
		fields["purchase_price"] = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		fields["selling_price"] = *req.SellingPrice
	}
	if req.WarrantyMonth != nil {
		fields["warranty_month"] = *req.WarrantyMonth
	}
	if len(fields) > 0 {
		fields["updated_by"] = actor
		if err := v.devices.Update(ctx, tx, unit.ID, fields); err != nil {
			return uuid.Nil, err
		}
	}
	return unit.PurchaseBatchID, nil
}

func (v serializedVariant) deleteUnits(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	_, err := v.devices.DeleteByItem(ctx, tx, itemID)
	return err
}

func (v serializedVariant) describe(ctx context.Context, item *model.Item, out *dto.ItemDetailResponse) error {
	units, err := v.devices.ListByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	out.Devices = make([]dto.DeviceResponse, 0, len(units))
	for i := range units {
		if units[i].Status == model.DeviceInStock {
			out.InStock++
		}
		out.Devices = append(out.Devices, deviceToResponse(&units[i]))
	}
	return nil
}

// ── Pooled ───────────────────────────────────────────────────────────────────

type pooledVariant struct{ *variantDeps }

func (pooledVariant) mode() model.ItemMode { return model.ModePooled }

func (pooledVariant) checkIntake(in intake) map[string]string {
	fields := map[string]string{}
	if in.batch == nil {
		fields["batch"] = "required"
	}
	if in.device != nil {
		fields["device"] = "not allowed for pooled items"
	}
	return fields
}

func (v pooledVariant) receive(ctx context.Context, tx *gorm.DB, item *model.Item, batchID uuid.UUID, in intake, _ *string) (received, error) {
	b := in.batch
	line := &model.PooledBatchLine{
		ItemID:          item.ID,
		PurchaseBatchID: batchID,
		Qty:             b.Qty,
		UnitCost:        b.UnitCost,
		UnitSellPrice:   b.UnitSellPrice,
		Detail:          b.Detail,
	}
	if err := v.batches.Create(ctx, tx, line); err != nil {
		return received{}, err
	}
	if _, err := v.reconciler.Adjust(ctx, tx, item.ID, b.Qty, false, movementNote{
		kind: model.MovementPurchase, reason: "batch received", ref: &line.ID,
	}); err != nil {
		return received{}, err
	}
	return received{line: line}, nil
}

func (pooledVariant) checkCorrection(req dto.UpdateItemRequest) map[string]string {
	fields := map[string]string{}
	if req.PurchasePrice != nil {
		fields["purchase_price"] = "not allowed for pooled items"
	}
	if req.SellingPrice != nil {
		fields["selling_price"] = "not allowed for pooled items"
	}
	if req.WarrantyMonth != nil {
		fields["warranty_month"] = "not allowed for pooled items"
	}
	checkNonNegative(fields, "unit_cost", req.UnitCost)
	checkNonNegative(fields, "unit_sell_price", req.UnitSellPrice)
	return fields
}

func (v pooledVariant) correct(ctx context.Context, tx *gorm.DB, item *model.Item, req dto.UpdateItemRequest, _ *string) (uuid.UUID, error) {
	line, err := v.batches.Latest(ctx, tx, item.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if req.Qty != nil || req.UnitCost != nil || req.UnitSellPrice != nil || req.PurchaseNotes != nil {
			return uuid.Nil, apierror.NotFound(apierror.ReasonBatchLineNotFound, "item has no batch line to correct")
		}
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	if err := applyBatchPatch(ctx, tx, v.variantDeps, line, req.Qty, req.UnitCost, req.UnitSellPrice, nil); err != nil {
		return uuid.Nil, err
	}
	return line.PurchaseBatchID, nil
}

func (v pooledVariant) deleteUnits(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	_, err := v.batches.DeleteByItem(ctx, tx, itemID)
	return err
}

func (v pooledVariant) describe(ctx context.Context, item *model.Item, out *dto.ItemDetailResponse) error {
	lines, err := v.batches.ListByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	out.InStock = item.StockQty
	out.BatchLines = make([]dto.BatchLineResponse, 0, len(lines))
	for i := range lines {
		out.BatchLines = append(out.BatchLines, batchLineToResponse(&lines[i]))
	}
	return nil
}

// applyBatchPatch updates a batch line and moves the item's stock by the
// qty difference.
func applyBatchPatch(ctx context.Context, tx *gorm.DB, d *variantDeps, line *model.PooledBatchLine,
	qty *int, unitCost, unitSellPrice *decimal.Decimal, detail *string) error {
	fields := map[string]any{}
	if qty != nil {
		fields["qty"] = *qty
	}
	if unitCost != nil {
		fields["unit_cost"] = *unitCost
	}
	if unitSellPrice != nil {
		fields["unit_sell_price"] = *unitSellPrice
	}
	if detail != nil {
		fields["detail"] = *detail
	}
	if err := d.batches.Update(ctx, tx, line.ID, fields); err != nil {
		return err
	}
	if qty != nil && *qty != line.Qty {
		if _, err := d.reconciler.Adjust(ctx, tx, line.ItemID, *qty-line.Qty, false, movementNote{
			kind: model.MovementCorrection, reason: "batch quantity corrected", ref: &line.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func nonEmpty(first string, rest ...*string) []string {
	out := []string{first}
	for _, s := range rest {
		if s != nil && *s != "" {
			out = append(out, *s)
		}
	}
	return out
}

func checkNonNegative(fields map[string]string, name string, v *decimal.Decimal) {
	if v != nil && v.IsNegative() {
		fields[name] = "min"
	}
}

// imeiConflict maps a unique-index violation on device IMEIs to the domain reason.
func imeiConflict(err error) error {
	err = apierror.FromStore(err, apierror.ReasonDeviceNotFound, "device not found")
	if apierror.IsReason(err, apierror.ReasonDuplicate) {
		return apierror.Wrap(apierror.KindConflict, apierror.ReasonImeiAlreadyRegistered,
			"IMEI is already registered", errors.Unwrap(err))
	}
	return err
}

func insufficientMsg(name string, have, want int) string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, have, want)
}

func fieldError(reason apierror.Reason, msg string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apierror.Validation(reason, msg, fields)
}
