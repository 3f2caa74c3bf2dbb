package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemMode is fixed at creation and decides how an item's stock is tracked.
type ItemMode string

const (
	// ModeSerialized items are phones: one DeviceUnit per physical unit, keyed by IMEI.
	ModeSerialized ItemMode = "serialized"
	// ModePooled items are counted only by quantity, via PooledBatchLines.
	ModePooled ItemMode = "pooled"
)

// Item is a catalog entry. StockQty is a derived cache owned by the stock
// reconciler; nothing else writes it.
type Item struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;index"`
	BrandID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Mode       ItemMode  `gorm:"type:varchar(16);not null;check:items_mode_check,mode IN ('serialized','pooled')"`
	StockQty   int       `gorm:"not null;default:0;check:items_stock_qty_check,stock_qty >= 0"`
	Details    *string
	ImagePath  *string
	SerialNo   *string `gorm:"index"`
	Storage    *string
	SimType    *string
	Color      *string
	CreatedBy  *string
	UpdatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Category and Brand are owned by the catalog admin service; this module
// only checks that referenced rows exist.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
