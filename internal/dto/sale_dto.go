package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest finalizes the current cart. When TotalAmount is omitted
// it is computed from the resolved line prices.
type CreateSaleRequest struct {
	CustomerName  *string          `json:"customer_name"  validate:"omitempty,max=200"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	TotalPaid     decimal.Decimal  `json:"total_paid"     validate:"min=0"`
	PaymentMethod string           `json:"payment_method" validate:"omitempty,max=32"`
}

// UpdateSaleRequest corrects header fields only; inventory is never touched.
type UpdateSaleRequest struct {
	CustomerName  *string          `json:"customer_name"  validate:"omitempty,min=1,max=200"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	TotalPaid     *decimal.Decimal `json:"total_paid"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,min=1,max=32"`
}

type SaleFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type SaleLineResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name"`
	Qty           int             `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
	IMEI          *string         `json:"imei,omitempty"`
	WarrantyStart *time.Time      `json:"warranty_start,omitempty"`
	WarrantyEnd   *time.Time      `json:"warranty_end,omitempty"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customer_name"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	TotalPaid     decimal.Decimal    `json:"total_paid"`
	PaymentMethod string             `json:"payment_method"`
	SoldBy        *string            `json:"sold_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Lines         []SaleLineResponse `json:"lines,omitempty"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ReceiptLine and Receipt are the payload handed to the document renderer.
type ReceiptLine struct {
	ItemName    string          `json:"item_name"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IMEI        *string         `json:"imei,omitempty"`
	WarrantyEnd *time.Time      `json:"warranty_end,omitempty"`
}

type Receipt struct {
	StoreName     string          `json:"store_name"`
	StoreAddress  string          `json:"store_address"`
	SaleID        string          `json:"sale_id"`
	CustomerName  string          `json:"customer_name"`
	Lines         []ReceiptLine   `json:"lines"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentMethod string          `json:"payment_method"`
	SaleDate      time.Time       `json:"sale_date"`
}

type CreateSaleResponse struct {
	Sale    SaleResponse `json:"sale"`
	Receipt Receipt      `json:"receipt"`
}

// LookupResult is one hit of the checkout search: either a single in-stock
// device matched by IMEI, or a catalog item matched by name or serial.
type LookupResult struct {
	Kind     string          `json:"kind"` // device | product
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Mode     string          `json:"mode"`
	DeviceID *string         `json:"device_id,omitempty"`
	IMEI1    *string         `json:"imei1,omitempty"`
	IMEI2    *string         `json:"imei2,omitempty"`
	SerialNo *string         `json:"serial_no,omitempty"`
	Stock    int             `json:"stock"`
	Price    decimal.Decimal `json:"price"`
}
