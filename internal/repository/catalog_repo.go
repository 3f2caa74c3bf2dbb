package repository

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository is a read-only view of categories and brands.
type CatalogRepository interface {
	FindCategory(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Category, error)
	FindBrand(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Brand, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) FindCategory(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	if err := conn(ctx, r.db, tx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) FindBrand(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Brand, error) {
	var b model.Brand
	if err := conn(ctx, r.db, tx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
