package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/kafka"
)

// settleCategory commits the category's matched pairs in transaction
// chunks. Each pair contributes two coupled mutations that always land
// in the same chunk, so either both sides settle or neither does.
// Chunks are committed sequentially; the first failure stops further
// commits for this category. A lost conditioned-write race is the
// designed detection for a concurrent cycle or amendment and ends the
// category quietly; already-committed chunks stand.
func (uc *Usecase) settleCategory(ctx context.Context, category string, matches []Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	pairsPerChunk := uc.store.MaxTransactItems() / 2
	if pairsPerChunk < 1 {
		pairsPerChunk = 1
	}
	tradeTime := time.Now().Unix()

	committed := 0
	for start := 0; start < len(matches); start += pairsPerChunk {
		end := min(start+pairsPerChunk, len(matches))
		chunk := matches[start:end]

		mutations := make([]domain.Mutation, 0, len(chunk)*2)
		for _, match := range chunk {
			mutations = append(mutations, settleAsk(match, tradeTime), settleBid(match, tradeTime))
		}

		if err := uc.store.TransactWrite(ctx, mutations); err != nil {
			if errors.Is(err, domain.ErrRaceLost) {
				uc.metrics.RaceLostTotal.Inc()
				uc.log.Info("settlement chunk lost a race, leaving remaining pairs for the next cycle",
					"category", category, "committed", committed, "remaining", len(matches)-committed)
				return committed, nil
			}
			return committed, fmt.Errorf("commit settlement chunk: %w", err)
		}

		committed += len(chunk)
		uc.publishTrades(category, chunk, tradeTime)
	}

	return committed, nil
}

func settleAsk(match Match, tradeTime int64) domain.Mutation {
	return domain.Mutation{Settle: &domain.SettleMutation{
		Key:           match.Ask.Key(),
		ExpectStatus:  domain.StatusListed,
		NewStatus:     domain.StatusSold,
		OtherPartyID:  match.Bid.CounterpartyID,
		ClearingPrice: match.ClearingPrice,
		ClearingDate:  tradeTime,
	}}
}

func settleBid(match Match, tradeTime int64) domain.Mutation {
	return domain.Mutation{Settle: &domain.SettleMutation{
		Key:           match.Bid.Key(),
		ExpectStatus:  domain.StatusPending,
		NewStatus:     domain.StatusSuccessful,
		OtherPartyID:  match.Ask.CounterpartyID,
		ClearingPrice: match.ClearingPrice,
		ClearingDate:  tradeTime,
	}}
}

func (uc *Usecase) publishTrades(category string, chunk []Match, tradeTime int64) {
	if uc.publisher == nil {
		return
	}

	msgs := make([]domain.Message, 0, len(chunk))
	for _, match := range chunk {
		event := kafka.TradeEvent{
			TradeID:       uc.newEventID(),
			Category:      category,
			BidID:         match.Bid.OrderID,
			ItemID:        match.Ask.OrderID,
			BuyerID:       match.Bid.CounterpartyID,
			SellerID:      match.Ask.CounterpartyID,
			ClearingPrice: match.ClearingPrice.String(),
			ClearingDate:  tradeTime,
		}
		value, err := json.Marshal(event)
		if err != nil {
			continue
		}
		msgs = append(msgs, domain.Message{Key: []byte(category), Value: value})
	}

	if err := uc.publisher.Publish(kafka.TopicTradeEvents, msgs...); err != nil {
		uc.log.Error("failed to publish trade events", "category", category, "error", err)
	}
}
