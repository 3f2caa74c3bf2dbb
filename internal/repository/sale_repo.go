package repository

import (
	"context"
	"strings"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	CreateLines(ctx context.Context, tx *gorm.DB, lines []model.SaleLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error)
	SetTotalAmount(ctx context.Context, tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	// Delete removes the lines and then the header. It reports header rows removed.
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	// SoldQty sums the quantity sold of an item across all recorded sales.
	SoldQty(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return conn(ctx, r.db, tx).Omit("Lines").Create(s).Error
}

func (r *saleRepo) CreateLines(ctx context.Context, tx *gorm.DB, lines []model.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(&lines).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("item_name").Order("id") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit, 200, 50)
	var sales []model.Sale
	err := q.Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.Sale{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *saleRepo) SetTotalAmount(ctx context.Context, tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return conn(ctx, r.db, tx).Model(&model.Sale{}).Where("id = ?", id).
		Update("total_amount", total).Error
}

func (r *saleRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	db := conn(ctx, r.db, tx)
	if err := db.Where("sale_id = ?", id).Delete(&model.SaleLine{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("id = ?", id).Delete(&model.Sale{})
	return res.RowsAffected, res.Error
}

func (r *saleRepo) SoldQty(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	var sum int64
	err := conn(ctx, r.db, tx).Model(&model.SaleLine{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(qty), 0)").
		Scan(&sum).Error
	return sum, err
}
