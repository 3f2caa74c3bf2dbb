package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseBatch groups one intake event. Rows are never deleted; only Notes
// may change after creation.
type PurchaseBatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedBy *string
	Notes     *string
	CreatedAt time.Time
}

func (p *PurchaseBatch) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DeviceStatus is the lifecycle of one serialized unit.
type DeviceStatus string

const (
	DeviceInStock  DeviceStatus = "in_stock"
	DeviceSold     DeviceStatus = "sold"
	DeviceReturned DeviceStatus = "returned"
)

// DeviceUnit is one physical phone. IMEI1 is globally unique; IMEI2 is
// unique when present.
type DeviceUnit struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseBatchID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IMEI1           string          `gorm:"column:imei1;uniqueIndex;not null"`
	IMEI2           *string         `gorm:"column:imei2;uniqueIndex"`
	PurchasePrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;check:device_units_purchase_price_check,purchase_price >= 0"`
	SellingPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;check:device_units_selling_price_check,selling_price >= 0"`
	WarrantyMonth   *int
	Detail          *string
	Status          DeviceStatus `gorm:"type:varchar(16);not null;default:'in_stock';index;check:device_units_status_check,status IN ('in_stock','sold','returned')"`
	CreatedBy       *string
	UpdatedBy       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	PurchaseBatch *PurchaseBatch `gorm:"foreignKey:PurchaseBatchID"`
}

func (d *DeviceUnit) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DeviceInStock
	}
	return nil
}

// PooledBatchLine records a quantity of a pooled item received in one batch.
type PooledBatchLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseBatchID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Qty             int             `gorm:"not null;check:pooled_batch_lines_qty_check,qty >= 0"`
	UnitCost        decimal.Decimal `gorm:"type:numeric(12,2);not null;check:pooled_batch_lines_unit_cost_check,unit_cost >= 0"`
	UnitSellPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null;check:pooled_batch_lines_unit_sell_price_check,unit_sell_price >= 0"`
	Detail          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	PurchaseBatch *PurchaseBatch `gorm:"foreignKey:PurchaseBatchID"`
}

func (l *PooledBatchLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// MovementKind classifies a StockMovement.
type MovementKind string

const (
	MovementPurchase    MovementKind = "purchase"
	MovementSale        MovementKind = "sale"
	MovementCorrection  MovementKind = "correction"
	MovementBatchDelete MovementKind = "batch_delete"
	MovementRecount     MovementKind = "recount"
)

// StockMovement records every persisted change of Item.StockQty.
type StockMovement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ItemID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind        MovementKind `gorm:"type:varchar(16);not null"`
	Delta       int          `gorm:"not null"` // positive = in, negative = out
	StockBefore int          `gorm:"not null"`
	StockAfter  int          `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // sale, batch line or device, when applicable
	CreatedAt   time.Time
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
