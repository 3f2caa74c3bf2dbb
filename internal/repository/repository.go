// Package repository holds the gorm-backed stores. Every method accepts an
// optional transaction handle: pass the tx from a service-level runTx to take
// part in it, or nil to run on the shared pool.
package repository

import (
	"context"

	"gorm.io/gorm"
)

func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func pageBounds(page, limit, maxLimit, defLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defLimit
	}
	return page, limit, (page - 1) * limit
}
