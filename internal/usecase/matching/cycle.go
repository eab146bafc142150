package matching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/kafka"
)

// CycleSummary is what the trigger gets back from one cycle.
type CycleSummary struct {
	CategoriesProcessed int `json:"categories_processed"`
	TradesCommitted     int `json:"trades_committed"`
	CategoriesFailed    int `json:"categories_failed"`
}

// RunCycle executes one full matching cycle. The cycle is stateless:
// everything it knows comes from the store, and overlapping cycles are
// safe because settlement writes are conditioned per row. Categories
// are independent; one category's failure is logged and the cycle moves
// on. Only a discovery failure aborts the invocation.
func (uc *Usecase) RunCycle(ctx context.Context) (*CycleSummary, error) {
	started := time.Now()
	uc.metrics.CyclesTotal.Inc()
	uc.log.Info("starting matching cycle")

	categories, err := uc.activeCategories(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CycleSummary{}
	for _, category := range categories {
		trades, err := uc.processCategory(ctx, category)
		summary.CategoriesProcessed++
		summary.TradesCommitted += trades
		uc.metrics.CategoriesProcessedTotal.Inc()
		if trades > 0 {
			uc.metrics.TradesCommittedTotal.WithLabelValues(category).Add(float64(trades))
		}
		if err != nil {
			summary.CategoriesFailed++
			uc.metrics.CategoryErrorsTotal.WithLabelValues(category).Inc()
			uc.log.Error("category processing failed", "category", category, "error", err)
		}
	}

	elapsed := time.Since(started)
	uc.metrics.CycleDuration.Observe(elapsed.Seconds())
	uc.publishCycleEvent(summary, started, elapsed)
	uc.log.Info("matching cycle finished",
		"categories", summary.CategoriesProcessed,
		"trades", summary.TradesCommitted,
		"failed", summary.CategoriesFailed,
		"duration", elapsed.String())

	return summary, nil
}

func (uc *Usecase) processCategory(ctx context.Context, category string) (int, error) {
	b, err := uc.loadBook(ctx, category)
	if err != nil {
		return 0, err
	}
	if len(b.bids) == 0 || len(b.asks) == 0 {
		uc.log.Debug("no matchable interest", "category", category, "bids", len(b.bids), "asks", len(b.asks))
		return 0, nil
	}

	matches := crossBook(b.bids, b.asks)
	if len(matches) == 0 {
		uc.log.Debug("book does not cross", "category", category, "bids", len(b.bids), "asks", len(b.asks))
		return 0, nil
	}

	committed, err := uc.settleCategory(ctx, category, matches)
	if committed > 0 {
		uc.log.Info("trades committed",
			"category", category,
			"trades", committed,
			"unmatched_bids", len(b.bids)-committed,
			"unmatched_asks", len(b.asks)-committed)
	}
	return committed, err
}

func (uc *Usecase) publishCycleEvent(summary *CycleSummary, started time.Time, elapsed time.Duration) {
	if uc.publisher == nil {
		return
	}

	event := kafka.CycleEvent{
		CycleID:             uc.newEventID(),
		CategoriesProcessed: summary.CategoriesProcessed,
		TradesCommitted:     summary.TradesCommitted,
		CategoriesFailed:    summary.CategoriesFailed,
		StartedAt:           started.Unix(),
		DurationMs:          elapsed.Milliseconds(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := uc.publisher.Publish(kafka.TopicCycleEvents, domain.Message{Key: []byte(event.CycleID), Value: value}); err != nil {
		uc.log.Error("failed to publish cycle event", "error", err)
	}
}
