package model

// All lists every persisted model in dependency order. Postgres schema is
// owned by the SQL migrations; this is used to build throwaway test schemas.
func All() []any {
	return []any{
		&Category{},
		&Brand{},
		&Item{},
		&PurchaseBatch{},
		&DeviceUnit{},
		&PooledBatchLine{},
		&StockMovement{},
		&CartLine{},
		&Sale{},
		&SaleLine{},
	}
}
