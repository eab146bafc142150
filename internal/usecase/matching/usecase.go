// Package matching implements the periodic matching and settlement
// cycle: discover categories with open interest, project each
// category's order book, cross bids against listings under price-time
// priority, and commit the matched pairs as conditioned store
// transactions.
package matching

import (
	"log/slog"

	"github.com/jaevor/go-nanoid"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/metrics"
)

type Usecase struct {
	store     domain.OrderStore
	publisher domain.PublisherPort
	metrics   *metrics.MatchingMetrics
	log       *slog.Logger

	newEventID func() string
}

// NewUsecase wires the cycle. publisher may be nil when event
// publishing is disabled.
func NewUsecase(
	store domain.OrderStore,
	publisher domain.PublisherPort,
	matchingMetrics *metrics.MatchingMetrics,
	log *slog.Logger) (*Usecase, error) {

	idGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}

	return &Usecase{
		store:      store,
		publisher:  publisher,
		metrics:    matchingMetrics,
		log:        log,
		newEventID: idGenerator,
	}, nil
}
