package repository

import (
	"context"
	"strings"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, tx *gorm.DB, it *model.Item) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	// FindByIDForUpdate takes a row lock held until tx ends.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	SetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
	// DecrementStockIfAvailable subtracts qty only when stock_qty >= qty and
	// reports the affected row count.
	DecrementStockIfAvailable(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, filter dto.ItemFilter) ([]model.Item, int64, error)
	Search(ctx context.Context, query string, limit int) ([]model.Item, error)
	DB() *gorm.DB
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) DB() *gorm.DB { return r.db }

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, it *model.Item) error {
	return conn(ctx, r.db, tx).Create(it).Error
}

func (r *itemRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	if err := conn(ctx, r.db, tx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&it, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Model(&model.Item{}).Where("id = ?", id).Updates(fields).Error
}

func (r *itemRepo) SetStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	return conn(ctx, r.db, tx).Model(&model.Item{}).Where("id = ?", id).
		Update("stock_qty", qty).Error
}

func (r *itemRepo) DecrementStockIfAvailable(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.Item{}).
		Where("id = ? AND stock_qty >= ?", id, qty).
		Update("stock_qty", gorm.Expr("stock_qty - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *itemRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("id = ?", id).Delete(&model.Item{})
	return res.RowsAffected, res.Error
}

func (r *itemRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID, filter dto.ItemFilter) ([]model.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{}).Where("category_id = ?", categoryID)
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.BrandID != "" {
		q = q.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Color != "" {
		q = q.Where("LOWER(color) = ?", strings.ToLower(filter.Color))
	}
	if filter.Storage != "" {
		q = q.Where("LOWER(storage) = ?", strings.ToLower(filter.Storage))
	}
	if filter.SimType != "" {
		q = q.Where("LOWER(sim_type) = ?", strings.ToLower(filter.SimType))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit, 200, 50)
	var items []model.Item
	err := q.Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) Search(ctx context.Context, query string, limit int) ([]model.Item, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(COALESCE(serial_no, '')) LIKE ?", like, like).
		Order("name").Order("id").
		Limit(limit).
		Find(&items).Error
	return items, err
}
