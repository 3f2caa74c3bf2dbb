package dto

import (
	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/shopspring/decimal"
)

// UpdateDeviceRequest patches one serialized unit. The only manual status
// change accepted is in_stock → returned.
type UpdateDeviceRequest struct {
	IMEI1         *string             `json:"imei1"          validate:"omitempty,numeric,min=8,max=20"`
	IMEI2         *string             `json:"imei2"          validate:"omitempty,numeric,min=8,max=20"`
	PurchasePrice *decimal.Decimal    `json:"purchase_price"`
	SellingPrice  *decimal.Decimal    `json:"selling_price"`
	WarrantyMonth *int                `json:"warranty_month" validate:"omitempty,min=0,max=120"`
	Detail        *string             `json:"detail"         validate:"omitempty,max=500"`
	Status        *model.DeviceStatus `json:"status"         validate:"omitempty,oneof=in_stock sold returned"`
	PurchaseNotes *string             `json:"purchase_notes" validate:"omitempty,max=1000"`
}

// UpdateBatchLineRequest patches one pooled batch line; a qty change moves
// the item's stock by the difference.
type UpdateBatchLineRequest struct {
	Qty           *int             `json:"qty"             validate:"omitempty,min=0"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	UnitSellPrice *decimal.Decimal `json:"unit_sell_price"`
	Detail        *string          `json:"detail"          validate:"omitempty,max=500"`
	PurchaseNotes *string          `json:"purchase_notes"  validate:"omitempty,max=1000"`
}

type DeleteUnitResponse struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	StockAfter int    `json:"stock_after"`
	Reconciled bool   `json:"reconciled"`
}

type ReconcileResponse struct {
	ItemID      string         `json:"item_id"`
	Mode        model.ItemMode `json:"mode"`
	StockBefore int            `json:"stock_before"`
	StockAfter  int            `json:"stock_after"`
}
