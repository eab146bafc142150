// Package pebblestore is an embedded implementation of the partitioned
// store contract on cockroachdb/pebble. Pebble keeps keys in byte
// order, so a prefix scan over one partition yields rows already sorted
// by sort key. Used for local runs and tests; postgres is the
// production backend.
package pebblestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/shopspring/decimal"
	"github.com/tradeoverflow/trade-service/internal/domain"
)

const (
	rowPrefix         = "row/"
	idIndexPrefix     = "idx/id/"
	statusIndexPrefix = "idx/status/"
)

type Store struct {
	db *pebble.DB

	// mu serializes TransactWrite condition checks against batch
	// commits; pebble batches alone do not give conditional writes.
	mu sync.Mutex

	maxTransactItems int
}

func Open(dir string, maxTransactItems int) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return newStore(db, maxTransactItems), nil
}

// OpenMem opens a store on an in-memory filesystem.
func OpenMem(maxTransactItems int) (*Store, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return newStore(db, maxTransactItems), nil
}

func newStore(db *pebble.DB, maxTransactItems int) *Store {
	if maxTransactItems <= 0 {
		maxTransactItems = domain.DefaultMaxTransactItems
	}
	return &Store{db: db, maxTransactItems: maxTransactItems}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) MaxTransactItems() int {
	return s.maxTransactItems
}

// rowRecord is the stored row shape.
type rowRecord struct {
	OrderID        string           `json:"order_id"`
	Category       string           `json:"category"`
	Role           string           `json:"role"`
	CounterpartyID string           `json:"counterparty_id"`
	Price          decimal.Decimal  `json:"price"`
	Status         string           `json:"status"`
	CreatedAt      int64            `json:"created_at"`
	ClearingPrice  *decimal.Decimal `json:"clearing_price,omitempty"`
	ClearingDate   *int64           `json:"clearing_date,omitempty"`
	OtherPartyID   string           `json:"other_party_id,omitempty"`
}

func toRecord(order *domain.Order) rowRecord {
	return rowRecord{
		OrderID:        order.OrderID,
		Category:       order.Category,
		Role:           string(order.Role),
		CounterpartyID: order.CounterpartyID,
		Price:          order.Price,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		ClearingPrice:  order.ClearingPrice,
		ClearingDate:   order.ClearingDate,
		OtherPartyID:   order.OtherPartyID,
	}
}

func toDomain(rec rowRecord) *domain.Order {
	return &domain.Order{
		OrderID:        rec.OrderID,
		Category:       rec.Category,
		Role:           domain.OrderRole(rec.Role),
		CounterpartyID: rec.CounterpartyID,
		Price:          rec.Price,
		Status:         domain.OrderStatus(rec.Status),
		CreatedAt:      rec.CreatedAt,
		ClearingPrice:  rec.ClearingPrice,
		ClearingDate:   rec.ClearingDate,
		OtherPartyID:   rec.OtherPartyID,
	}
}

func rowKey(key domain.RowKey) []byte {
	return []byte(rowPrefix + key.PK + "/" + key.SK)
}

func idIndexKey(orderID string) []byte {
	return []byte(idIndexPrefix + orderID)
}

func statusIndexKey(status domain.OrderStatus, key domain.RowKey) []byte {
	return []byte(statusIndexPrefix + string(status) + "/" + key.PK + "/" + key.SK)
}

// prefixUpperBound returns the smallest key greater than every key with
// the given prefix.
func prefixUpperBound(prefix string) []byte {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return b[:i+1]
		}
	}
	return nil
}

func (s *Store) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	ptr, closer, err := s.db.Get(idIndexKey(orderID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrOrderNotFound)
		}
		return nil, err
	}
	var key domain.RowKey
	unmarshalErr := json.Unmarshal(ptr, &key)
	closer.Close()
	if unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return s.getRow(key)
}

func (s *Store) getRow(key domain.RowKey) (*domain.Order, error) {
	val, closer, err := s.db.Get(rowKey(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, fmt.Errorf("row %s: %w", key.SK, domain.ErrOrderNotFound)
		}
		return nil, err
	}
	defer closer.Close()

	var rec rowRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, err
	}
	return toDomain(rec), nil
}

func (s *Store) QueryCategory(ctx context.Context, category string) ([]*domain.Order, error) {
	prefix := rowPrefix + "CATEGORY#" + category + "/"
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var orders []*domain.Order
	for iter.First(); iter.Valid(); iter.Next() {
		var rec rowRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, err
		}
		orders = append(orders, toDomain(rec))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("query category %s: %w", category, err)
	}
	return orders, nil
}

func (s *Store) QueryCategoriesByStatus(ctx context.Context, status domain.OrderStatus) ([]string, error) {
	prefix := statusIndexPrefix + string(status) + "/"
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	seen := make(map[string]struct{})
	var categories []string
	for iter.First(); iter.Valid(); iter.Next() {
		category := string(iter.Value())
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("query status %s: %w", status, err)
	}
	return categories, nil
}

func (s *Store) PutOrder(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := s.putInBatch(batch, order); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (s *Store) putInBatch(batch *pebble.Batch, order *domain.Order) error {
	rec, err := json.Marshal(toRecord(order))
	if err != nil {
		return err
	}
	key := order.Key()
	ptr, err := json.Marshal(key)
	if err != nil {
		return err
	}
	if err := batch.Set(rowKey(key), rec, nil); err != nil {
		return err
	}
	if err := batch.Set(idIndexKey(order.OrderID), ptr, nil); err != nil {
		return err
	}
	return batch.Set(statusIndexKey(order.Status, key), []byte(order.Category), nil)
}

// TransactWrite checks every mutation's condition under the store lock,
// then applies the whole list as one synced batch. A failed condition
// means a concurrent writer already moved the row: nothing is applied
// and the caller sees ErrRaceLost.
func (s *Store) TransactWrite(ctx context.Context, mutations []domain.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	if len(mutations) > s.maxTransactItems {
		return fmt.Errorf("transaction of %d mutations exceeds ceiling %d", len(mutations), s.maxTransactItems)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, mutation := range mutations {
		switch {
		case mutation.Put != nil:
			if err := s.putInBatch(batch, mutation.Put); err != nil {
				return err
			}

		case mutation.Delete != nil:
			del := mutation.Delete
			current, err := s.getRow(del.Key)
			if err != nil {
				return fmt.Errorf("delete %s: %w", del.Key.SK, domain.ErrRaceLost)
			}
			if current.Status != del.ExpectStatus {
				return fmt.Errorf("delete %s: status %s: %w", del.Key.SK, current.Status, domain.ErrRaceLost)
			}
			if err := batch.Delete(rowKey(del.Key), nil); err != nil {
				return err
			}
			if err := batch.Delete(idIndexKey(current.OrderID), nil); err != nil {
				return err
			}
			if err := batch.Delete(statusIndexKey(current.Status, del.Key), nil); err != nil {
				return err
			}

		case mutation.Settle != nil:
			settle := mutation.Settle
			current, err := s.getRow(settle.Key)
			if err != nil {
				return fmt.Errorf("settle %s: %w", settle.Key.SK, domain.ErrRaceLost)
			}
			if current.Status != settle.ExpectStatus {
				return fmt.Errorf("settle %s: status %s: %w", settle.Key.SK, current.Status, domain.ErrRaceLost)
			}

			settled := *current
			settled.Status = settle.NewStatus
			clearingPrice := settle.ClearingPrice
			clearingDate := settle.ClearingDate
			settled.ClearingPrice = &clearingPrice
			settled.ClearingDate = &clearingDate
			settled.OtherPartyID = settle.OtherPartyID

			rec, err := json.Marshal(toRecord(&settled))
			if err != nil {
				return err
			}
			if err := batch.Set(rowKey(settle.Key), rec, nil); err != nil {
				return err
			}
			if err := batch.Delete(statusIndexKey(settle.ExpectStatus, settle.Key), nil); err != nil {
				return err
			}
			if err := batch.Set(statusIndexKey(settle.NewStatus, settle.Key), []byte(current.Category), nil); err != nil {
				return err
			}

		default:
			return fmt.Errorf("empty mutation")
		}
	}

	return batch.Commit(pebble.Sync)
}
