package orderdto

import (
	"github.com/shopspring/decimal"

	"github.com/tradeoverflow/trade-service/internal/domain"
)

type SubmitBidInput struct {
	Category string
	BuyerID  string
	MaxPrice decimal.Decimal
}

type SubmitListingInput struct {
	Category string
	SellerID string
	MinPrice decimal.Decimal
}

type AmendPriceInput struct {
	OrderID  string
	NewPrice decimal.Decimal
}

// StatusOutput is the status view of one order. Clearing fields are
// only present once the order is terminal.
type StatusOutput struct {
	OrderID       string
	Role          domain.OrderRole
	Status        domain.OrderStatus
	ClearingPrice *decimal.Decimal
	ClearingDate  *int64
	OtherPartyID  string
}
