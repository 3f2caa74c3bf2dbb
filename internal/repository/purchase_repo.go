package repository

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseRepository is append-only apart from notes corrections.
type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.PurchaseBatch) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PurchaseBatch, error)
	UpdateNotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, notes *string) error
}

type purchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository { return &purchaseRepo{db: db} }

func (r *purchaseRepo) Create(ctx context.Context, tx *gorm.DB, p *model.PurchaseBatch) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *purchaseRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.PurchaseBatch, error) {
	var p model.PurchaseBatch
	if err := conn(ctx, r.db, tx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepo) UpdateNotes(ctx context.Context, tx *gorm.DB, id uuid.UUID, notes *string) error {
	return conn(ctx, r.db, tx).Model(&model.PurchaseBatch{}).Where("id = ?", id).
		Update("notes", notes).Error
}
