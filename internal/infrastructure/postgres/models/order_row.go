package models

import (
	"github.com/shopspring/decimal"
)

// OrderRowModel is the single-table row layout: composite (pk, sk)
// primary key, order_id unique index for point lookups, (status,
// category) index for the discovery scan.
type OrderRowModel struct {
	Pk             string          `gorm:"column:pk;primaryKey"`
	Sk             string          `gorm:"column:sk;primaryKey"`
	OrderID        string          `gorm:"uniqueIndex:idx_order_rows_order_id"`
	Category       string          `gorm:"index:idx_order_rows_status_category,priority:2"`
	Role           string
	CounterpartyID string
	Price          decimal.Decimal `gorm:"type:numeric"`
	Status         string          `gorm:"index:idx_order_rows_status_category,priority:1"`
	CreatedAt      int64
	ClearingPrice  *decimal.Decimal `gorm:"type:numeric"`
	ClearingDate   *int64
	OtherPartyID   *string
}

func (OrderRowModel) TableName() string {
	return "order_rows"
}
