package repository

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepository interface {
	Create(ctx context.Context, tx *gorm.DB, l *model.PooledBatchLine) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PooledBatchLine, error)
	// Latest returns the most recently created batch line of the item.
	Latest(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*model.PooledBatchLine, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.PooledBatchLine, error)
	SumQty(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
}

type batchRepo struct{ db *gorm.DB }

func NewBatchRepository(db *gorm.DB) BatchRepository { return &batchRepo{db: db} }

func (r *batchRepo) Create(ctx context.Context, tx *gorm.DB, l *model.PooledBatchLine) error {
	return conn(ctx, r.db, tx).Omit("PurchaseBatch").Create(l).Error
}

func (r *batchRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PooledBatchLine, error) {
	var l model.PooledBatchLine
	if err := conn(ctx, r.db, tx).Preload("PurchaseBatch").First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *batchRepo) Latest(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*model.PooledBatchLine, error) {
	var l model.PooledBatchLine
	err := conn(ctx, r.db, tx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").Order("id DESC").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *batchRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.PooledBatchLine, error) {
	var list []model.PooledBatchLine
	err := r.db.WithContext(ctx).Preload("PurchaseBatch").
		Where("item_id = ?", itemID).
		Order("created_at DESC").Order("id").
		Find(&list).Error
	return list, err
}

func (r *batchRepo) SumQty(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	var sum int64
	err := conn(ctx, r.db, tx).Model(&model.PooledBatchLine{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(qty), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *batchRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Model(&model.PooledBatchLine{}).Where("id = ?", id).Updates(fields).Error
}

func (r *batchRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("id = ?", id).Delete(&model.PooledBatchLine{})
	return res.RowsAffected, res.Error
}

func (r *batchRepo) DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("item_id = ?", itemID).Delete(&model.PooledBatchLine{})
	return res.RowsAffected, res.Error
}
