package matching

import (
	"context"
	"fmt"

	"github.com/tradeoverflow/trade-service/internal/domain"
)

// book is the projected state of one category: open bids and open asks.
type book struct {
	bids []*domain.Order
	asks []*domain.Order
}

// loadBook materializes the full partition for one category and splits
// it into sides. Rows already terminal are ignored; they only exist in
// the partition as settled history.
func (uc *Usecase) loadBook(ctx context.Context, category string) (*book, error) {
	rows, err := uc.store.QueryCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("project book: %w", err)
	}

	b := &book{}
	for _, row := range rows {
		switch {
		case row.Role == domain.RoleBid && row.Status == domain.StatusPending:
			b.bids = append(b.bids, row)
		case row.Role == domain.RoleListing && row.Status == domain.StatusListed:
			b.asks = append(b.asks, row)
		}
	}
	return b, nil
}
