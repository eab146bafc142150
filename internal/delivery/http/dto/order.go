package dto

import "github.com/shopspring/decimal"

// Price fields are pointers: validator's required only fires on nil,
// not on a zero-valued decimal.
type SubmitBidRequest struct {
	ItemType string           `json:"item_type" validate:"required"`
	BuyerID  string           `json:"buyer_id" validate:"required"`
	MaxPrice *decimal.Decimal `json:"max_price" validate:"required"`
}

type ListItemRequest struct {
	ItemType string           `json:"item_type" validate:"required"`
	SellerID string           `json:"seller_id" validate:"required"`
	MinPrice *decimal.Decimal `json:"min_price" validate:"required"`
}

type UpdatePriceRequest struct {
	NewPrice *decimal.Decimal `json:"new_price" validate:"required"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	ItemType  string          `json:"item_type"`
	BuyerID   string          `json:"buyer_id"`
	MaxPrice  decimal.Decimal `json:"max_price"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

type ItemResponse struct {
	ItemID    string          `json:"item_id"`
	ItemType  string          `json:"item_type"`
	SellerID  string          `json:"seller_id"`
	MinPrice  decimal.Decimal `json:"min_price"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

// BidStatusResponse carries purchase terms only once the bid settled.
type BidStatusResponse struct {
	BidID         string           `json:"bid_id"`
	Status        string           `json:"status"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	PurchaseDate  *string          `json:"purchase_date,omitempty"`
	SellerID      string           `json:"seller_id,omitempty"`
}

// ItemStatusResponse carries sale terms only once the item sold.
type ItemStatusResponse struct {
	ItemID    string           `json:"item_id"`
	Status    string           `json:"status"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	SaleDate  *string          `json:"sale_date,omitempty"`
	BuyerID   string           `json:"buyer_id,omitempty"`
}

type CycleSummaryResponse struct {
	CategoriesProcessed int `json:"categories_processed"`
	TradesCommitted     int `json:"trades_committed"`
	CategoriesFailed    int `json:"categories_failed"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
