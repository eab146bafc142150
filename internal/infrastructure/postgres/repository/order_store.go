package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

// pageSize bounds one keyset page when draining a partition or index scan.
const pageSize = 500

type DefaultOrderStore struct {
	DB               *gorm.DB
	maxTransactItems int
}

func NewDefaultOrderStore(db *gorm.DB, maxTransactItems int) *DefaultOrderStore {
	if maxTransactItems <= 0 {
		maxTransactItems = domain.DefaultMaxTransactItems
	}
	return &DefaultOrderStore{DB: db, maxTransactItems: maxTransactItems}
}

func (s *DefaultOrderStore) MaxTransactItems() int {
	return s.maxTransactItems
}

func (s *DefaultOrderStore) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model models.OrderRowModel
	err := s.DB.WithContext(ctx).First(&model, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrOrderNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

// QueryCategory drains one partition in sort-key order using keyset
// pagination, so callers always see the fully materialized book.
func (s *DefaultOrderStore) QueryCategory(ctx context.Context, category string) ([]*domain.Order, error) {
	pk := (&domain.Order{Category: category}).PartitionKey()

	var orders []*domain.Order
	lastSk := ""
	for {
		var page []models.OrderRowModel
		err := s.DB.WithContext(ctx).
			Where("pk = ? AND sk > ?", pk, lastSk).
			Order("sk").
			Limit(pageSize).
			Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("query category %s: %w", category, err)
		}
		for i := range page {
			orders = append(orders, mappers.ToDomainOrder(&page[i]))
		}
		if len(page) < pageSize {
			return orders, nil
		}
		lastSk = page[len(page)-1].Sk
	}
}

func (s *DefaultOrderStore) QueryCategoriesByStatus(ctx context.Context, status domain.OrderStatus) ([]string, error) {
	var categories []string
	lastCategory := ""
	for {
		var page []string
		err := s.DB.WithContext(ctx).
			Model(&models.OrderRowModel{}).
			Distinct("category").
			Where("status = ? AND category > ?", string(status), lastCategory).
			Order("category").
			Limit(pageSize).
			Pluck("category", &page).Error
		if err != nil {
			return nil, fmt.Errorf("query status %s: %w", status, err)
		}
		categories = append(categories, page...)
		if len(page) < pageSize {
			return categories, nil
		}
		lastCategory = page[len(page)-1]
	}
}

func (s *DefaultOrderStore) PutOrder(ctx context.Context, order *domain.Order) error {
	if err := s.DB.WithContext(ctx).Create(mappers.ToRowModel(order)).Error; err != nil {
		return fmt.Errorf("put order %s: %w", order.OrderID, err)
	}
	return nil
}

// TransactWrite applies the mutation list inside one database
// transaction. Every conditioned mutation re-checks its row's status at
// commit time; zero rows affected means a concurrent writer got there
// first, and the whole transaction rolls back with ErrRaceLost.
func (s *DefaultOrderStore) TransactWrite(ctx context.Context, mutations []domain.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	if len(mutations) > s.maxTransactItems {
		return fmt.Errorf("transaction of %d mutations exceeds ceiling %d", len(mutations), s.maxTransactItems)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, mutation := range mutations {
			switch {
			case mutation.Put != nil:
				if err := tx.Create(mappers.ToRowModel(mutation.Put)).Error; err != nil {
					return err
				}

			case mutation.Delete != nil:
				del := mutation.Delete
				res := tx.Where("pk = ? AND sk = ? AND status = ?", del.Key.PK, del.Key.SK, string(del.ExpectStatus)).
					Delete(&models.OrderRowModel{})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("delete %s: %w", del.Key.SK, domain.ErrRaceLost)
				}

			case mutation.Settle != nil:
				settle := mutation.Settle
				res := tx.Model(&models.OrderRowModel{}).
					Where("pk = ? AND sk = ? AND status = ?", settle.Key.PK, settle.Key.SK, string(settle.ExpectStatus)).
					Updates(map[string]interface{}{
						"status":         string(settle.NewStatus),
						"other_party_id": settle.OtherPartyID,
						"clearing_price": settle.ClearingPrice,
						"clearing_date":  settle.ClearingDate,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("settle %s: %w", settle.Key.SK, domain.ErrRaceLost)
				}

			default:
				return errors.New("empty mutation")
			}
		}
		return nil
	})
}
