package dto

import (
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/shopspring/decimal"
)

// ── Intake ───────────────────────────────────────────────────────────────────

// DeviceIntake is the serialized half of an intake payload: one phone.
type DeviceIntake struct {
	IMEI1         string          `json:"imei1"           validate:"required,numeric,min=8,max=20"`
	IMEI2         *string         `json:"imei2"           validate:"omitempty,numeric,min=8,max=20"`
	PurchasePrice decimal.Decimal `json:"purchase_price"  validate:"min=0"`
	SellingPrice  decimal.Decimal `json:"selling_price"   validate:"min=0"`
	WarrantyMonth *int            `json:"warranty_month"  validate:"omitempty,min=0,max=120"`
	Detail        *string         `json:"detail"          validate:"omitempty,max=500"`
}

// BatchIntake is the pooled half of an intake payload: a quantity received.
type BatchIntake struct {
	Qty           int             `json:"qty"              validate:"required,gt=0"`
	UnitCost      decimal.Decimal `json:"unit_cost"        validate:"min=0"`
	UnitSellPrice decimal.Decimal `json:"unit_sell_price"  validate:"min=0"`
	Detail        *string         `json:"detail"           validate:"omitempty,max=500"`
}

// CreateItemRequest creates an item together with its first purchase. Exactly
// one of Device or Batch must be set, matching Mode.
type CreateItemRequest struct {
	Name          string         `json:"name"           validate:"required,max=200"`
	BrandID       string         `json:"brand_id"       validate:"required,uuid"`
	CategoryID    string         `json:"category_id"    validate:"required,uuid"`
	Mode          model.ItemMode `json:"mode"           validate:"required,oneof=serialized pooled"`
	Details       *string        `json:"details"        validate:"omitempty,max=1000"`
	ImagePath     *string        `json:"image_path"     validate:"omitempty,max=500"`
	SerialNo      *string        `json:"serial_no"      validate:"omitempty,max=100"`
	Storage       *string        `json:"storage"        validate:"omitempty,max=50"`
	SimType       *string        `json:"sim_type"       validate:"omitempty,max=50"`
	Color         *string        `json:"color"          validate:"omitempty,max=50"`
	PurchaseNotes *string        `json:"purchase_notes" validate:"omitempty,max=1000"`
	Device        *DeviceIntake  `json:"device"`
	Batch         *BatchIntake   `json:"batch"`
}

// PurchaseRequest adds stock to an existing item.
type PurchaseRequest struct {
	Notes  *string       `json:"notes"  validate:"omitempty,max=1000"`
	Device *DeviceIntake `json:"device"`
	Batch  *BatchIntake  `json:"batch"`
}

// UpdateItemRequest is a patch. Nil fields are left untouched. Price and
// quantity corrections target the item's most recent unit or batch line.
type UpdateItemRequest struct {
	Name       *string `json:"name"        validate:"omitempty,min=1,max=200"`
	BrandID    *string `json:"brand_id"    validate:"omitempty,uuid"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	Details    *string `json:"details"     validate:"omitempty,max=1000"`
	ImagePath  *string `json:"image_path"  validate:"omitempty,max=500"`
	SerialNo   *string `json:"serial_no"   validate:"omitempty,max=100"`
	Storage    *string `json:"storage"     validate:"omitempty,max=50"`
	SimType    *string `json:"sim_type"    validate:"omitempty,max=50"`
	Color      *string `json:"color"       validate:"omitempty,max=50"`

	// serialized only
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	WarrantyMonth *int             `json:"warranty_month" validate:"omitempty,min=0,max=120"`

	// pooled only
	Qty           *int             `json:"qty" validate:"omitempty,min=0"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	UnitSellPrice *decimal.Decimal `json:"unit_sell_price"`

	PurchaseNotes *string `json:"purchase_notes" validate:"omitempty,max=1000"`
}

// ItemFilter narrows the per-category item listing.
type ItemFilter struct {
	Search  string `form:"search"`
	BrandID string `form:"brand_id"`
	Color   string `form:"color"`
	Storage string `form:"storage"`
	SimType string `form:"sim_type"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

// ── Responses ────────────────────────────────────────────────────────────────

type ItemResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	BrandID    string         `json:"brand_id"`
	CategoryID string         `json:"category_id"`
	Mode       model.ItemMode `json:"mode"`
	StockQty   int            `json:"stock_qty"`
	Details    *string        `json:"details,omitempty"`
	ImagePath  *string        `json:"image_path,omitempty"`
	SerialNo   *string        `json:"serial_no,omitempty"`
	Storage    *string        `json:"storage,omitempty"`
	SimType    *string        `json:"sim_type,omitempty"`
	Color      *string        `json:"color,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type DeviceResponse struct {
	ID              string             `json:"id"`
	ItemID          string             `json:"item_id"`
	PurchaseBatchID string             `json:"purchase_batch_id"`
	IMEI1           string             `json:"imei1"`
	IMEI2           *string            `json:"imei2,omitempty"`
	PurchasePrice   decimal.Decimal    `json:"purchase_price"`
	SellingPrice    decimal.Decimal    `json:"selling_price"`
	WarrantyMonth   *int               `json:"warranty_month,omitempty"`
	Detail          *string            `json:"detail,omitempty"`
	Status          model.DeviceStatus `json:"status"`
	PurchaseNotes   *string            `json:"purchase_notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

type BatchLineResponse struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	PurchaseBatchID string          `json:"purchase_batch_id"`
	Qty             int             `json:"qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitSellPrice   decimal.Decimal `json:"unit_sell_price"`
	Detail          *string         `json:"detail,omitempty"`
	PurchaseNotes   *string         `json:"purchase_notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PurchaseResponse is returned by item creation and purchase intake.
type PurchaseResponse struct {
	Item            ItemResponse       `json:"item"`
	PurchaseBatchID string             `json:"purchase_batch_id"`
	Device          *DeviceResponse    `json:"device,omitempty"`
	BatchLine       *BatchLineResponse `json:"batch_line,omitempty"`
}

// ItemDetailResponse carries the item with its units (serialized) or batch
// lines (pooled). InStock is a live count, independent of the cached StockQty.
type ItemDetailResponse struct {
	ItemResponse
	InStock    int                 `json:"in_stock"`
	Devices    []DeviceResponse    `json:"devices,omitempty"`
	BatchLines []BatchLineResponse `json:"batch_lines,omitempty"`
}

type ItemListResponse struct {
	Data  []ItemResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
