package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradeoverflow/trade-service/internal/usecase/matching"
)

type BackgroundTasks struct {
	MatchingUsecase *matching.Usecase
	Interval        time.Duration
	Log             *slog.Logger
}

func NewBackgroundTasks(matchingUsecase *matching.Usecase, interval time.Duration, log *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		MatchingUsecase: matchingUsecase,
		Interval:        interval,
		Log:             log,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startMatchingCycle(ctx)
}

// startMatchingCycle runs the engine on a fixed schedule. One goroutine
// drives the ticker, so ticks never overlap locally; overlap with other
// service instances is handled by the store's conditioned writes, not
// by any lock.
func (bt *BackgroundTasks) startMatchingCycle(ctx context.Context) {
	ticker := time.NewTicker(bt.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.MatchingUsecase.RunCycle(ctx); err != nil {
				bt.Log.Error("scheduled matching cycle failed", "error", err)
			}
		}
	}
}
