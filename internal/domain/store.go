package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultMaxTransactItems is the per-transaction mutation ceiling used
// when the config does not override it.
const DefaultMaxTransactItems = 100

// RowKey addresses a single row in the partitioned store.
type RowKey struct {
	PK string
	SK string
}

// DeleteMutation removes a row, conditioned on its status still being
// ExpectStatus at commit time.
type DeleteMutation struct {
	Key          RowKey
	ExpectStatus OrderStatus
}

// SettleMutation moves a row into its terminal status and records the
// counterparty and clearing terms, conditioned on the row still holding
// its non-terminal ExpectStatus.
type SettleMutation struct {
	Key           RowKey
	ExpectStatus  OrderStatus
	NewStatus     OrderStatus
	OtherPartyID  string
	ClearingPrice decimal.Decimal
	ClearingDate  int64
}

// Mutation is one item of a store transaction. Exactly one field is set.
type Mutation struct {
	Put    *Order
	Delete *DeleteMutation
	Settle *SettleMutation
}

// OrderStore is the partitioned store contract. Rows are keyed by
// category partition and a price-ordered sort key; order_id and status
// are reachable through secondary indexes. TransactWrite applies all
// mutations atomically or none, and surfaces a failed condition as
// ErrRaceLost.
type OrderStore interface {
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	QueryCategory(ctx context.Context, category string) ([]*Order, error)
	QueryCategoriesByStatus(ctx context.Context, status OrderStatus) ([]string, error)
	PutOrder(ctx context.Context, order *Order) error
	TransactWrite(ctx context.Context, mutations []Mutation) error
	MaxTransactItems() int
}
