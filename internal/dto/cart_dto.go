package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddCartLineRequest stages one line. Serialized items need an IMEI and qty 1;
// pooled items must not carry an IMEI.
type AddCartLineRequest struct {
	ItemID       string          `json:"item_id"       validate:"required,uuid"`
	ItemName     string          `json:"item_name"     validate:"omitempty,max=200"`
	IMEI         *string         `json:"imei"          validate:"omitempty,numeric,min=8,max=20"`
	Qty          int             `json:"qty"           validate:"required,gt=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"min=0"`
}

type CartLineResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	IMEI         *string         `json:"imei,omitempty"`
	Qty          int             `json:"qty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	RowTotal     decimal.Decimal `json:"row_total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CartGroup aggregates every staged line of one item.
type CartGroup struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Qty      int             `json:"qty"`
	Total    decimal.Decimal `json:"total"`
}

type CartResponse struct {
	Items      []CartGroup     `json:"items"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

type CartRemoveResponse struct {
	Removed int64 `json:"removed"`
}
