package mappers

import (
	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/infrastructure/postgres/models"
)

func ToRowModel(order *domain.Order) *models.OrderRowModel {
	model := &models.OrderRowModel{
		Pk:             order.PartitionKey(),
		Sk:             order.SortKey(),
		OrderID:        order.OrderID,
		Category:       order.Category,
		Role:           string(order.Role),
		CounterpartyID: order.CounterpartyID,
		Price:          order.Price,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		ClearingPrice:  order.ClearingPrice,
		ClearingDate:   order.ClearingDate,
	}
	if order.OtherPartyID != "" {
		model.OtherPartyID = &order.OtherPartyID
	}
	return model
}

func ToDomainOrder(model *models.OrderRowModel) *domain.Order {
	order := &domain.Order{
		OrderID:        model.OrderID,
		Category:       model.Category,
		Role:           domain.OrderRole(model.Role),
		CounterpartyID: model.CounterpartyID,
		Price:          model.Price,
		Status:         domain.OrderStatus(model.Status),
		CreatedAt:      model.CreatedAt,
		ClearingPrice:  model.ClearingPrice,
		ClearingDate:   model.ClearingDate,
	}
	if model.OtherPartyID != nil {
		order.OtherPartyID = *model.OtherPartyID
	}
	return order
}
