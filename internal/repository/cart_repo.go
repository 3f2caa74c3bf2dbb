package repository

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartGroupRow is one aggregated row of the cart listing.
type CartGroupRow struct {
	ItemID   uuid.UUID
	ItemName string
	Qty      int64
	Total    decimal.Decimal
}

type CartRepository interface {
	Create(ctx context.Context, tx *gorm.DB, l *model.CartLine) error
	IMEIInCart(ctx context.Context, tx *gorm.DB, imei string) (bool, error)
	// Lines returns every staged line in insertion order.
	Lines(ctx context.Context, tx *gorm.DB) ([]model.CartLine, error)
	Grouped(ctx context.Context) ([]CartGroupRow, error)
	DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
	Clear(ctx context.Context, tx *gorm.DB) (int64, error)
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository { return &cartRepo{db: db} }

func (r *cartRepo) Create(ctx context.Context, tx *gorm.DB, l *model.CartLine) error {
	return conn(ctx, r.db, tx).Create(l).Error
}

func (r *cartRepo) IMEIInCart(ctx context.Context, tx *gorm.DB, imei string) (bool, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.CartLine{}).Where("imei = ?", imei).Count(&n).Error
	return n > 0, err
}

func (r *cartRepo) Lines(ctx context.Context, tx *gorm.DB) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := conn(ctx, r.db, tx).Order("created_at").Order("id").Find(&lines).Error
	return lines, err
}

func (r *cartRepo) Grouped(ctx context.Context) ([]CartGroupRow, error) {
	var rows []CartGroupRow
	err := r.db.WithContext(ctx).Model(&model.CartLine{}).
		Select("item_id, item_name, SUM(qty) AS qty, SUM(row_total) AS total").
		Group("item_id, item_name").
		Order("item_name").Order("item_id").
		Scan(&rows).Error
	return rows, err
}

func (r *cartRepo) DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("item_id = ?", itemID).Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *cartRepo) Clear(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := conn(ctx, r.db, tx).Where("1 = 1").Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}
