package pebblestore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeoverflow/trade-service/internal/domain"
)

func newMemStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenMem(domain.DefaultMaxTransactItems)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func order(id, category string, role domain.OrderRole, status domain.OrderStatus, price int64, createdAt int64) *domain.Order {
	return &domain.Order{
		OrderID:        id,
		Category:       category,
		Role:           role,
		CounterpartyID: "party-" + id,
		Price:          decimal.NewFromInt(price),
		Status:         status,
		CreatedAt:      createdAt,
	}
}

func TestGetByOrderID(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	put := order("b1", "gpu", domain.RoleBid, domain.StatusPending, 100, 1)
	require.NoError(t, store.PutOrder(ctx, put))

	got, err := store.GetByOrderID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.OrderID)
	assert.Equal(t, "gpu", got.Category)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(100)))

	_, err = store.GetByOrderID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestQueryCategoryReturnsRowsInPriceOrder(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	// Inserted out of price order on purpose.
	for _, o := range []*domain.Order{
		order("b-mid", "gpu", domain.RoleBid, domain.StatusPending, 250, 1),
		order("b-low", "gpu", domain.RoleBid, domain.StatusPending, 10, 2),
		order("b-high", "gpu", domain.RoleBid, domain.StatusPending, 1000, 3),
	} {
		require.NoError(t, store.PutOrder(ctx, o))
	}

	rows, err := store.QueryCategory(ctx, "gpu")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "b-low", rows[0].OrderID)
	assert.Equal(t, "b-mid", rows[1].OrderID)
	assert.Equal(t, "b-high", rows[2].OrderID)
}

func TestQueryCategoryIsolatesPartitions(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutOrder(ctx, order("b1", "gpu", domain.RoleBid, domain.StatusPending, 100, 1)))
	require.NoError(t, store.PutOrder(ctx, order("b2", "cpu", domain.RoleBid, domain.StatusPending, 100, 1)))

	rows, err := store.QueryCategory(ctx, "gpu")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b1", rows[0].OrderID)
}

func TestQueryCategoriesByStatus(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutOrder(ctx, order("b1", "gpu", domain.RoleBid, domain.StatusPending, 100, 1)))
	require.NoError(t, store.PutOrder(ctx, order("b2", "cpu", domain.RoleBid, domain.StatusPending, 100, 1)))
	require.NoError(t, store.PutOrder(ctx, order("a1", "ram", domain.RoleListing, domain.StatusListed, 90, 1)))

	pending, err := store.QueryCategoriesByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gpu", "cpu"}, pending)

	listed, err := store.QueryCategoriesByStatus(ctx, domain.StatusListed)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ram"}, listed)

	sold, err := store.QueryCategoriesByStatus(ctx, domain.StatusSold)
	require.NoError(t, err)
	assert.Empty(t, sold)
}

func TestSettleMovesStatusIndexEntry(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	listing := order("a1", "gpu", domain.RoleListing, domain.StatusListed, 90, 1)
	require.NoError(t, store.PutOrder(ctx, listing))

	price := decimal.NewFromInt(95)
	require.NoError(t, store.TransactWrite(ctx, []domain.Mutation{
		{Settle: &domain.SettleMutation{
			Key:           listing.Key(),
			ExpectStatus:  domain.StatusListed,
			NewStatus:     domain.StatusSold,
			OtherPartyID:  "buyer-1",
			ClearingPrice: price,
			ClearingDate:  777,
		}},
	}))

	listed, err := store.QueryCategoriesByStatus(ctx, domain.StatusListed)
	require.NoError(t, err)
	assert.Empty(t, listed)

	sold, err := store.QueryCategoriesByStatus(ctx, domain.StatusSold)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gpu"}, sold)

	got, err := store.GetByOrderID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	require.NotNil(t, got.ClearingPrice)
	assert.True(t, got.ClearingPrice.Equal(price))
	require.NotNil(t, got.ClearingDate)
	assert.Equal(t, int64(777), *got.ClearingDate)
	assert.Equal(t, "buyer-1", got.OtherPartyID)
}

func TestTransactWriteConditionFailureAppliesNothing(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	b := order("b1", "gpu", domain.RoleBid, domain.StatusPending, 100, 1)
	a := order("a1", "gpu", domain.RoleListing, domain.StatusSold, 90, 1)
	require.NoError(t, store.PutOrder(ctx, b))
	require.NoError(t, store.PutOrder(ctx, a))

	price := decimal.NewFromInt(90)
	err := store.TransactWrite(ctx, []domain.Mutation{
		{Settle: &domain.SettleMutation{
			Key:           b.Key(),
			ExpectStatus:  domain.StatusPending,
			NewStatus:     domain.StatusSuccessful,
			OtherPartyID:  "party-a1",
			ClearingPrice: price,
			ClearingDate:  1,
		}},
		{Settle: &domain.SettleMutation{
			Key:           a.Key(),
			ExpectStatus:  domain.StatusListed, // already SOLD: condition fails
			NewStatus:     domain.StatusSold,
			OtherPartyID:  "party-b1",
			ClearingPrice: price,
			ClearingDate:  1,
		}},
	})
	require.ErrorIs(t, err, domain.ErrRaceLost)

	// The first mutation must not have leaked through.
	got, err := store.GetByOrderID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.ClearingPrice)
}

func TestTransactWriteDeleteThenPutReplacesRow(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	original := order("b1", "gpu", domain.RoleBid, domain.StatusPending, 100, 1)
	require.NoError(t, store.PutOrder(ctx, original))

	amended := *original
	amended.Price = decimal.NewFromInt(120)

	require.NoError(t, store.TransactWrite(ctx, []domain.Mutation{
		{Delete: &domain.DeleteMutation{Key: original.Key(), ExpectStatus: domain.StatusPending}},
		{Put: &amended},
	}))

	got, err := store.GetByOrderID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, original.CreatedAt, got.CreatedAt)

	// Only the re-keyed row remains in the partition.
	rows, err := store.QueryCategory(ctx, "gpu")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(120)))
}

func TestTransactWriteRejectsOversizedTransaction(t *testing.T) {
	store, err := OpenMem(2)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	muts := make([]domain.Mutation, 3)
	for i := range muts {
		o := order("x", "gpu", domain.RoleBid, domain.StatusPending, 1, 1)
		muts[i] = domain.Mutation{Put: o}
	}
	err = store.TransactWrite(context.Background(), muts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ceiling")
}
