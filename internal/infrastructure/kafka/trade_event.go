package kafka

const (
	TopicTradeEvents = "trade-events"
	TopicCycleEvents = "matching-cycle-events"
)

// TradeEvent is published once per committed trade.
type TradeEvent struct {
	TradeID       string `json:"trade_id"`
	Category      string `json:"category"`
	BidID         string `json:"bid_id"`
	ItemID        string `json:"item_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	ClearingPrice string `json:"clearing_price"`
	ClearingDate  int64  `json:"clearing_date"`
}

// CycleEvent summarizes one matching cycle.
type CycleEvent struct {
	CycleID             string `json:"cycle_id"`
	CategoriesProcessed int    `json:"categories_processed"`
	TradesCommitted     int    `json:"trades_committed"`
	CategoriesFailed    int    `json:"categories_failed"`
	StartedAt           int64  `json:"started_at"`
	DurationMs          int64  `json:"duration_ms"`
}
