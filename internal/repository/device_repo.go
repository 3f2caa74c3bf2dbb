package repository

import (
	"context"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.DeviceUnit) error
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DeviceUnit, error)
	// FindByItemAndIMEI matches either IMEI slot of a unit belonging to itemID.
	FindByItemAndIMEI(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, imei string) (*model.DeviceUnit, error)
	FindInStockByIMEI(ctx context.Context, imei string) (*model.DeviceUnit, error)
	// IMEITaken reports whether imei is used in any slot by a unit other than excludeID.
	IMEITaken(ctx context.Context, tx *gorm.DB, imei string, excludeID uuid.UUID) (bool, error)
	// Latest returns the most recently created unit of the item.
	Latest(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*model.DeviceUnit, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.DeviceUnit, error)
	CountInStock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	// MarkSold flips in_stock → sold; 0 rows affected means the unit was no
	// longer in stock.
	MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, updatedBy *string) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error)
}

type deviceRepo struct{ db *gorm.DB }

func NewDeviceRepository(db *gorm.DB) DeviceRepository { return &deviceRepo{db: db} }

func (r *deviceRepo) Create(ctx context.Context, tx *gorm.DB, d *model.DeviceUnit) error {
	return conn(ctx, r.db, tx).Omit("PurchaseBatch").Create(d).Error
}

func (r *deviceRepo) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DeviceUnit, error) {
	var d model.DeviceUnit
	if err := conn(ctx, r.db, tx).Preload("PurchaseBatch").First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) FindByItemAndIMEI(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, imei string) (*model.DeviceUnit, error) {
	var d model.DeviceUnit
	err := conn(ctx, r.db, tx).
		Where("item_id = ? AND (imei1 = ? OR imei2 = ?)", itemID, imei, imei).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) FindInStockByIMEI(ctx context.Context, imei string) (*model.DeviceUnit, error) {
	var d model.DeviceUnit
	err := r.db.WithContext(ctx).
		Where("status = ? AND (imei1 = ? OR imei2 = ?)", model.DeviceInStock, imei, imei).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) IMEITaken(ctx context.Context, tx *gorm.DB, imei string, excludeID uuid.UUID) (bool, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.DeviceUnit{}).
		Where("(imei1 = ? OR imei2 = ?) AND id <> ?", imei, imei, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *deviceRepo) Latest(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*model.DeviceUnit, error) {
	var d model.DeviceUnit
	err := conn(ctx, r.db, tx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").Order("id DESC").
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deviceRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.DeviceUnit, error) {
	var list []model.DeviceUnit
	err := r.db.WithContext(ctx).Preload("PurchaseBatch").
		Where("item_id = ?", itemID).
		Order("created_at DESC").Order("id").
		Find(&list).Error
	return list, err
}

func (r *deviceRepo) CountInStock(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	var n int64
	err := conn(ctx, r.db, tx).Model(&model.DeviceUnit{}).
		Where("item_id = ? AND status = ?", itemID, model.DeviceInStock).
		Count(&n).Error
	return n, err
}

func (r *deviceRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Model(&model.DeviceUnit{}).Where("id = ?", id).Updates(fields).Error
}

func (r *deviceRepo) MarkSold(ctx context.Context, tx *gorm.DB, id uuid.UUID, updatedBy *string) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.DeviceUnit{}).
		Where("id = ? AND status = ?", id, model.DeviceInStock).
		Updates(map[string]any{
			"status":     model.DeviceSold,
			"updated_by": updatedBy,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *deviceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("id = ?", id).Delete(&model.DeviceUnit{})
	return res.RowsAffected, res.Error
}

func (r *deviceRepo) DeleteByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int64, error) {
	res := conn(ctx, r.db, tx).Where("item_id = ?", itemID).Delete(&model.DeviceUnit{})
	return res.RowsAffected, res.Error
}
