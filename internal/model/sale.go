package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is a staged selection. There is a single shared cart; it is
// drained by sale finalization.
type CartLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName     string          `gorm:"not null"`
	IMEI         *string         `gorm:"column:imei;uniqueIndex"`
	Qty          int             `gorm:"not null;check:cart_lines_qty_check,qty > 0"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RowTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"index"`
}

func (c *CartLine) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Sale is the immutable record of a finalized checkout. Only header fields
// can be corrected afterwards.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerName  string          `gorm:"not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPaid     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod string          `gorm:"not null;default:'cash'"`
	SoldBy        *string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Lines []SaleLine `gorm:"foreignKey:SaleID"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleLine keeps a snapshot of the item name and carries no foreign key to
// items, so removing a catalog entry leaves sales history intact.
type SaleLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemName      string          `gorm:"not null"`
	Qty           int             `gorm:"not null;check:sale_lines_qty_check,qty > 0"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IMEI          *string         `gorm:"column:imei"`
	WarrantyStart *time.Time
	WarrantyEnd   *time.Time
}

func (l *SaleLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LineTotal is qty × unit price.
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}
