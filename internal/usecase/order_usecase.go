package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/metrics"
	orderdto "github.com/tradeoverflow/trade-service/internal/usecase/dto/order"
)

type OrderUsecase interface {
	SubmitBid(ctx context.Context, input *orderdto.SubmitBidInput) (*domain.Order, error)
	SubmitListing(ctx context.Context, input *orderdto.SubmitListingInput) (*domain.Order, error)

	AmendBidPrice(ctx context.Context, input *orderdto.AmendPriceInput) (*domain.Order, error)
	AmendListingPrice(ctx context.Context, input *orderdto.AmendPriceInput) (*domain.Order, error)

	GetBidStatus(ctx context.Context, bidID string) (*orderdto.StatusOutput, error)
	GetListingStatus(ctx context.Context, itemID string) (*orderdto.StatusOutput, error)
}

type DefaultOrderUsecase struct {
	Store   domain.OrderStore
	Metrics *metrics.MatchingMetrics
	Log     *slog.Logger
}

func NewDefaultOrderUsecase(
	store domain.OrderStore,
	matchingMetrics *metrics.MatchingMetrics,
	log *slog.Logger) *DefaultOrderUsecase {

	return &DefaultOrderUsecase{
		Store:   store,
		Metrics: matchingMetrics,
		Log:     log,
	}
}

func (uc *DefaultOrderUsecase) SubmitBid(ctx context.Context, input *orderdto.SubmitBidInput) (*domain.Order, error) {
	if err := validateSubmission(input.Category, input.BuyerID, input.MaxPrice); err != nil {
		return nil, err
	}

	bid := &domain.Order{
		OrderID:        uuid.NewString(),
		Category:       input.Category,
		Role:           domain.RoleBid,
		CounterpartyID: input.BuyerID,
		Price:          input.MaxPrice,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().Unix(),
	}

	if err := uc.Store.PutOrder(ctx, bid); err != nil {
		return nil, fmt.Errorf("submit bid: %w", err)
	}

	uc.Metrics.OrdersSubmittedTotal.WithLabelValues(string(domain.RoleBid), bid.Category).Inc()
	uc.Log.Info("bid submitted", "bid_id", bid.OrderID, "category", bid.Category, "max_price", bid.Price.String())
	return bid, nil
}

func (uc *DefaultOrderUsecase) SubmitListing(ctx context.Context, input *orderdto.SubmitListingInput) (*domain.Order, error) {
	if err := validateSubmission(input.Category, input.SellerID, input.MinPrice); err != nil {
		return nil, err
	}

	listing := &domain.Order{
		OrderID:        uuid.NewString(),
		Category:       input.Category,
		Role:           domain.RoleListing,
		CounterpartyID: input.SellerID,
		Price:          input.MinPrice,
		Status:         domain.StatusListed,
		CreatedAt:      time.Now().Unix(),
	}

	if err := uc.Store.PutOrder(ctx, listing); err != nil {
		return nil, fmt.Errorf("submit listing: %w", err)
	}

	uc.Metrics.OrdersSubmittedTotal.WithLabelValues(string(domain.RoleListing), listing.Category).Inc()
	uc.Log.Info("item listed", "item_id", listing.OrderID, "category", listing.Category, "min_price", listing.Price.String())
	return listing, nil
}

func (uc *DefaultOrderUsecase) AmendBidPrice(ctx context.Context, input *orderdto.AmendPriceInput) (*domain.Order, error) {
	return uc.amendPrice(ctx, input, domain.RoleBid)
}

func (uc *DefaultOrderUsecase) AmendListingPrice(ctx context.Context, input *orderdto.AmendPriceInput) (*domain.Order, error) {
	return uc.amendPrice(ctx, input, domain.RoleListing)
}

// amendPrice replaces the order's row under a new price-bearing sort
// key as an atomic conditioned delete-then-insert. Identity, status and
// created_at carry over unchanged. A lost race means a concurrent cycle
// settled the order first, which is a conflict from the caller's view.
func (uc *DefaultOrderUsecase) amendPrice(ctx context.Context, input *orderdto.AmendPriceInput, role domain.OrderRole) (*domain.Order, error) {
	if input.OrderID == "" {
		return nil, fmt.Errorf("order_id: %w", domain.ErrValidation)
	}
	if !input.NewPrice.IsPositive() {
		return nil, fmt.Errorf("new_price: %w", domain.ErrValidation)
	}

	order, err := uc.Store.GetByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Role != role {
		return nil, fmt.Errorf("order %s: %w", input.OrderID, domain.ErrOrderNotFound)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("order %s: %w", input.OrderID, domain.ErrConflict)
	}

	amended := *order
	amended.Price = input.NewPrice

	mutations := []domain.Mutation{
		{Delete: &domain.DeleteMutation{Key: order.Key(), ExpectStatus: order.Status}},
		{Put: &amended},
	}
	if err := uc.Store.TransactWrite(ctx, mutations); err != nil {
		if errors.Is(err, domain.ErrRaceLost) {
			return nil, fmt.Errorf("order %s: %w", input.OrderID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("amend price: %w", err)
	}

	uc.Metrics.PriceAmendmentsTotal.WithLabelValues(string(role)).Inc()
	uc.Log.Info("price amended", "order_id", order.OrderID, "role", role, "new_price", input.NewPrice.String())
	return &amended, nil
}

func (uc *DefaultOrderUsecase) GetBidStatus(ctx context.Context, bidID string) (*orderdto.StatusOutput, error) {
	return uc.getStatus(ctx, bidID, domain.RoleBid)
}

func (uc *DefaultOrderUsecase) GetListingStatus(ctx context.Context, itemID string) (*orderdto.StatusOutput, error) {
	return uc.getStatus(ctx, itemID, domain.RoleListing)
}

func (uc *DefaultOrderUsecase) getStatus(ctx context.Context, orderID string, role domain.OrderRole) (*orderdto.StatusOutput, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order_id: %w", domain.ErrValidation)
	}

	order, err := uc.Store.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Role != role {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrOrderNotFound)
	}

	return &orderdto.StatusOutput{
		OrderID:       order.OrderID,
		Role:          order.Role,
		Status:        order.Status,
		ClearingPrice: order.ClearingPrice,
		ClearingDate:  order.ClearingDate,
		OtherPartyID:  order.OtherPartyID,
	}, nil
}

func validateSubmission(category, counterpartyID string, price decimal.Decimal) error {
	if category == "" {
		return fmt.Errorf("category: %w", domain.ErrValidation)
	}
	if counterpartyID == "" {
		return fmt.Errorf("counterparty id: %w", domain.ErrValidation)
	}
	if !price.IsPositive() {
		return fmt.Errorf("price: %w", domain.ErrValidation)
	}
	return nil
}
