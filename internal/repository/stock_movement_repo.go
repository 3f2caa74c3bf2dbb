package repository

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementFilter defines filters for listing stock movements.
type StockMovementFilter struct {
	ItemID *uuid.UUID
	Kind   model.MovementKind
	Page   int
	Limit  int
}

type StockMovementRepository interface {
	Create(ctx context.Context, tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
	DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) Create(ctx context.Context, tx *gorm.DB, m *model.StockMovement) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *stockMovementRepo) List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ItemID != nil {
		q = q.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit, 500, 100)
	var movements []model.StockMovement
	err := q.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("item_id = ?", itemID).Delete(&model.StockMovement{})
	return res.RowsAffected, res.Error
}
