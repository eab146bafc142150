package matching

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/metrics"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/pebblestore"
)

// One registration per test binary: promauto collectors live in the
// default registry.
var testMetrics = metrics.NewMatchingMetrics()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUsecase(t *testing.T, store domain.OrderStore) *Usecase {
	t.Helper()
	uc, err := NewUsecase(store, nil, testMetrics, discardLogger())
	require.NoError(t, err)
	return uc
}

func newMemStore(t *testing.T) *pebblestore.Store {
	t.Helper()
	store, err := pebblestore.OpenMem(domain.DefaultMaxTransactItems)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store domain.OrderStore, orders ...*domain.Order) {
	t.Helper()
	for _, order := range orders {
		require.NoError(t, store.PutOrder(context.Background(), order))
	}
}

func mustGet(t *testing.T, store domain.OrderStore, orderID string) *domain.Order {
	t.Helper()
	order, err := store.GetByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}

func TestRunCycleSettlesCrossedBook(t *testing.T) {
	store := newMemStore(t)
	seed(t, store,
		bid("b1", 100, 0), bid("b2", 100, 1),
		ask("a1", 80, 0), ask("a2", 95, 0),
	)
	uc := newTestUsecase(t, store)

	summary, err := uc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CategoriesProcessed)
	assert.Equal(t, 2, summary.TradesCommitted)
	assert.Equal(t, 0, summary.CategoriesFailed)

	for _, bidID := range []string{"b1", "b2"} {
		settled := mustGet(t, store, bidID)
		assert.Equal(t, domain.StatusSuccessful, settled.Status)
		require.NotNil(t, settled.ClearingPrice)
		assert.True(t, settled.ClearingPrice.Equal(decimal.NewFromInt(100)))
		require.NotNil(t, settled.ClearingDate)
		assert.NotEmpty(t, settled.OtherPartyID)
	}
	for _, askID := range []string{"a1", "a2"} {
		settled := mustGet(t, store, askID)
		assert.Equal(t, domain.StatusSold, settled.Status)
		require.NotNil(t, settled.ClearingPrice)
		assert.True(t, settled.ClearingPrice.Equal(decimal.NewFromInt(100)))
		assert.NotEmpty(t, settled.OtherPartyID)
	}
}

func TestRunCycleNoCrossMutatesNothing(t *testing.T) {
	store := newMemStore(t)
	seed(t, store, bid("b1", 50, 0), ask("a1", 60, 0))
	uc := newTestUsecase(t, store)

	summary, err := uc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CategoriesProcessed)
	assert.Equal(t, 0, summary.TradesCommitted)

	assert.Equal(t, domain.StatusPending, mustGet(t, store, "b1").Status)
	assert.Equal(t, domain.StatusListed, mustGet(t, store, "a1").Status)
}

func TestRunCycleIsIdempotent(t *testing.T) {
	store := newMemStore(t)
	seed(t, store,
		bid("b1", 100, 0), bid("b2", 100, 1), bid("b3", 100, 2),
		ask("a1", 80, 0), ask("a2", 90, 0),
	)
	uc := newTestUsecase(t, store)

	first, err := uc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.TradesCommitted)

	// No intervening submissions: the second run finds nothing to cross.
	second, err := uc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.TradesCommitted)

	// The losing bid is still open, untouched by either run.
	leftover := mustGet(t, store, "b3")
	assert.Equal(t, domain.StatusPending, leftover.Status)
	assert.Nil(t, leftover.ClearingPrice)
}

func TestRunCycleProcessesCategoriesIndependently(t *testing.T) {
	store := newMemStore(t)

	alphaBid := bid("b-alpha", 100, 0)
	alphaBid.Category = "alpha"
	alphaAsk := ask("a-alpha", 90, 0)
	alphaAsk.Category = "alpha"

	betaBid := bid("b-beta", 100, 0)
	betaBid.Category = "beta"
	betaAsk := ask("a-beta", 90, 0)
	betaAsk.Category = "beta"

	seed(t, store, alphaBid, alphaAsk, betaBid, betaAsk)

	failing := &failingStore{OrderStore: store, failCategory: "alpha"}
	uc := newTestUsecase(t, failing)

	summary, err := uc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CategoriesProcessed)
	assert.Equal(t, 1, summary.CategoriesFailed)
	assert.Equal(t, 1, summary.TradesCommitted)

	// beta settled despite alpha's failure.
	assert.Equal(t, domain.StatusSuccessful, mustGet(t, store, "b-beta").Status)
	assert.Equal(t, domain.StatusPending, mustGet(t, store, "b-alpha").Status)
}

func TestRunCycleAbortsWhenDiscoveryFails(t *testing.T) {
	store := newMemStore(t)
	seed(t, store, bid("b1", 100, 0), ask("a1", 90, 0))

	failing := &failingStore{OrderStore: store, failDiscovery: true}
	uc := newTestUsecase(t, failing)

	_, err := uc.RunCycle(context.Background())
	require.Error(t, err)

	assert.Equal(t, domain.StatusPending, mustGet(t, store, "b1").Status)
}

func TestSettleCategoryRaceLeavesPairUntouched(t *testing.T) {
	store := newMemStore(t)
	raceBid := bid("b1", 100, 0)
	raceAsk := ask("a1", 90, 0)
	seed(t, store, raceBid, raceAsk)
	uc := newTestUsecase(t, store)

	matches := crossBook([]*domain.Order{raceBid}, []*domain.Order{raceAsk})
	require.Len(t, matches, 1)

	// A concurrent cycle settles the ask before our commit.
	require.NoError(t, store.TransactWrite(context.Background(), []domain.Mutation{
		{Settle: &domain.SettleMutation{
			Key:           raceAsk.Key(),
			ExpectStatus:  domain.StatusListed,
			NewStatus:     domain.StatusSold,
			OtherPartyID:  "rival-buyer",
			ClearingPrice: decimal.NewFromInt(90),
			ClearingDate:  42,
		}},
	}))

	committed, err := uc.settleCategory(context.Background(), "gpu", matches)
	require.NoError(t, err)
	assert.Equal(t, 0, committed)

	// Atomicity: the bid side of the lost pair was not mutated.
	survivor := mustGet(t, store, "b1")
	assert.Equal(t, domain.StatusPending, survivor.Status)
	assert.Nil(t, survivor.ClearingPrice)
	assert.Empty(t, survivor.OtherPartyID)

	rival := mustGet(t, store, "a1")
	assert.Equal(t, "rival-buyer", rival.OtherPartyID)
}

// failingStore wraps a real store and injects read failures.
type failingStore struct {
	domain.OrderStore
	failCategory  string
	failDiscovery bool
}

func (f *failingStore) QueryCategory(ctx context.Context, category string) ([]*domain.Order, error) {
	if category == f.failCategory {
		return nil, fmt.Errorf("simulated partition read failure")
	}
	return f.OrderStore.QueryCategory(ctx, category)
}

func (f *failingStore) QueryCategoriesByStatus(ctx context.Context, status domain.OrderStatus) ([]string, error) {
	if f.failDiscovery {
		return nil, fmt.Errorf("simulated index read failure")
	}
	return f.OrderStore.QueryCategoriesByStatus(ctx, status)
}
