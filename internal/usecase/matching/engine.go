package matching

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradeoverflow/trade-service/internal/domain"
)

// Match is one crossed pair and the price it settles at.
type Match struct {
	Bid           *domain.Order
	Ask           *domain.Order
	ClearingPrice decimal.Decimal
}

// crossBook runs price-time priority crossing over one category's book
// and returns the matched pairs in match order. Bids are grouped into
// price levels (equal-priced runs, highest first); within a level
// buyers are served oldest first against the cheapest eligible asks.
//
// The clearing price is decided per pop from the live remaining counts:
// when buyers still waiting outnumber the eligible sellers left, the
// trade clears at the seller's price, otherwise at the buyer's price.
//
// An order popped here is never reconsidered in the same cycle; when
// a level's eligible sellers run out first, its unmatched buyers are
// simply left open for a later cycle.
func crossBook(bids, asks []*domain.Order) []Match {
	if len(bids) == 0 || len(asks) == 0 {
		return nil
	}

	levels := priceLevels(sortBids(bids))
	asks = sortAsks(asks)

	var matches []Match
	for len(levels) > 0 && len(asks) > 0 {
		buyers := levels[0]
		levelPrice := buyers[0].Price

		// Eligible asks are a prefix of the ask pool: the pool is
		// sorted ascending and crossing needs ask price <= bid price.
		eligible := 0
		for eligible < len(asks) && asks[eligible].Price.LessThanOrEqual(levelPrice) {
			eligible++
		}
		if eligible == 0 {
			levels = levels[1:]
			continue
		}

		matched := 0
		for len(buyers) > 0 && matched < eligible {
			buyer := buyers[0]
			seller := asks[matched]

			clearingPrice := buyer.Price
			if len(buyers) > eligible-matched {
				// Demand exceeds remaining supply: seller's terms win.
				clearingPrice = seller.Price
			}

			matches = append(matches, Match{Bid: buyer, Ask: seller, ClearingPrice: clearingPrice})
			buyers = buyers[1:]
			matched++
		}

		asks = asks[matched:]
		if len(buyers) == 0 {
			levels = levels[1:]
		} else {
			// Sellers ran out mid-level. Keep only the still-unmatched
			// buyers; the next pass finds no eligible asks for them and
			// drops the level without re-matching anyone.
			levels[0] = buyers
		}
	}

	return matches
}

// sortBids orders buy interest by descending price, then submission
// time, then id for a stable total order.
func sortBids(bids []*domain.Order) []*domain.Order {
	sorted := make([]*domain.Order, len(bids))
	copy(sorted, bids)
	sort.Slice(sorted, func(i, j int) bool {
		if cmp := sorted[i].Price.Cmp(sorted[j].Price); cmp != 0 {
			return cmp > 0
		}
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].OrderID < sorted[j].OrderID
	})
	return sorted
}

// sortAsks orders sell interest by ascending price, then submission
// time, then id.
func sortAsks(asks []*domain.Order) []*domain.Order {
	sorted := make([]*domain.Order, len(asks))
	copy(sorted, asks)
	sort.Slice(sorted, func(i, j int) bool {
		if cmp := sorted[i].Price.Cmp(sorted[j].Price); cmp != 0 {
			return cmp < 0
		}
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].OrderID < sorted[j].OrderID
	})
	return sorted
}

// priceLevels splits price-sorted bids into consecutive equal-price
// runs, highest level first.
func priceLevels(sortedBids []*domain.Order) [][]*domain.Order {
	var levels [][]*domain.Order
	for i := 0; i < len(sortedBids); {
		j := i + 1
		for j < len(sortedBids) && sortedBids[j].Price.Equal(sortedBids[i].Price) {
			j++
		}
		levels = append(levels, sortedBids[i:j])
		i = j
	}
	return levels
}
