package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderRole string

const (
	RoleBid     OrderRole = "BID"
	RoleListing OrderRole = "SELL"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusSuccessful OrderStatus = "SUCCESSFUL"
	StatusListed     OrderStatus = "LISTED"
	StatusSold       OrderStatus = "SOLD"
)

// Terminal reports whether the status admits no further transition.
func (s OrderStatus) Terminal() bool {
	return s == StatusSuccessful || s == StatusSold
}

// NonTerminalStatuses are the status values the discovery scan looks for.
var NonTerminalStatuses = []OrderStatus{StatusListed, StatusPending}

// Order is one side of a potential trade: a buyer's bid or a seller's
// listing. Clearing fields are set exactly once, by the settlement write
// that moves the order into its terminal status.
type Order struct {
	OrderID        string
	Category       string
	Role           OrderRole
	CounterpartyID string
	Price          decimal.Decimal
	Status         OrderStatus
	CreatedAt      int64

	ClearingPrice *decimal.Decimal
	ClearingDate  *int64
	OtherPartyID  string
}

const (
	partitionKeyPrefix = "CATEGORY#"

	// priceKeyWidth fits any positive price this system accepts once
	// rendered with a fixed number of decimal places.
	priceKeyWidth  = 24
	priceKeyPlaces = 8
)

// PartitionKey scopes a row to its category; one order book per partition.
func (o *Order) PartitionKey() string {
	return partitionKeyPrefix + o.Category
}

// SortKey encodes role, price, submission time and id so that a plain
// range scan over a partition yields rows in price order per role.
// Price and timestamp are zero-padded to keep lexicographic order numeric.
func (o *Order) SortKey() string {
	return fmt.Sprintf("%s#%s#CREATED#%012d#%s", o.Role, encodePriceKey(o.Price), o.CreatedAt, o.OrderID)
}

func (o *Order) Key() RowKey {
	return RowKey{PK: o.PartitionKey(), SK: o.SortKey()}
}

func encodePriceKey(price decimal.Decimal) string {
	s := price.StringFixed(priceKeyPlaces)
	if len(s) < priceKeyWidth {
		s = strings.Repeat("0", priceKeyWidth-len(s)) + s
	}
	return s
}
