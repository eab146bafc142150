package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/tradeoverflow/trade-service/internal/delivery/http/dto"
	"github.com/tradeoverflow/trade-service/internal/domain"
	"github.com/tradeoverflow/trade-service/internal/usecase"
	orderdto "github.com/tradeoverflow/trade-service/internal/usecase/dto/order"
)

type OrderHandler struct {
	log          *slog.Logger
	orderUsecase usecase.OrderUsecase
	validate     *validator.Validate
}

func NewOrderHandler(log *slog.Logger, orderUsecase usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{
		log:          log,
		orderUsecase: orderUsecase,
		validate:     validator.New(),
	}
}

func (h *OrderHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Post("/bids", h.SubmitBid)
	router.Get("/bids/{bidID}", h.GetBidStatus)
	router.Patch("/bids/{bidID}/price", h.UpdateBidPrice)

	router.Post("/items", h.ListItem)
	router.Get("/items/{itemID}", h.GetItemStatus)
	router.Patch("/items/{itemID}/price", h.UpdateItemPrice)

	return router
}

func (h *OrderHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request format"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Missing required fields"})
		return
	}

	bid, err := h.orderUsecase.SubmitBid(r.Context(), &orderdto.SubmitBidInput{
		Category: req.ItemType,
		BuyerID:  req.BuyerID,
		MaxPrice: *req.MaxPrice,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BidResponse{
		BidID:     bid.OrderID,
		ItemType:  bid.Category,
		BuyerID:   bid.CounterpartyID,
		MaxPrice:  bid.Price,
		Status:    string(bid.Status),
		CreatedAt: formatTimestamp(bid.CreatedAt),
	})
}

func (h *OrderHandler) ListItem(w http.ResponseWriter, r *http.Request) {
	var req dto.ListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request format"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Missing required fields"})
		return
	}

	item, err := h.orderUsecase.SubmitListing(r.Context(), &orderdto.SubmitListingInput{
		Category: req.ItemType,
		SellerID: req.SellerID,
		MinPrice: *req.MinPrice,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ItemResponse{
		ItemID:    item.OrderID,
		ItemType:  item.Category,
		SellerID:  item.CounterpartyID,
		MinPrice:  item.Price,
		Status:    string(item.Status),
		CreatedAt: formatTimestamp(item.CreatedAt),
	})
}

func (h *OrderHandler) UpdateBidPrice(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidID")

	var req dto.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request format"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Missing required field: new_price"})
		return
	}

	bid, err := h.orderUsecase.AmendBidPrice(r.Context(), &orderdto.AmendPriceInput{
		OrderID:  bidID,
		NewPrice: *req.NewPrice,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BidResponse{
		BidID:     bid.OrderID,
		ItemType:  bid.Category,
		BuyerID:   bid.CounterpartyID,
		MaxPrice:  bid.Price,
		Status:    string(bid.Status),
		CreatedAt: formatTimestamp(bid.CreatedAt),
	})
}

func (h *OrderHandler) UpdateItemPrice(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req dto.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request format"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Missing required field: new_price"})
		return
	}

	item, err := h.orderUsecase.AmendListingPrice(r.Context(), &orderdto.AmendPriceInput{
		OrderID:  itemID,
		NewPrice: *req.NewPrice,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemResponse{
		ItemID:    item.OrderID,
		ItemType:  item.Category,
		SellerID:  item.CounterpartyID,
		MinPrice:  item.Price,
		Status:    string(item.Status),
		CreatedAt: formatTimestamp(item.CreatedAt),
	})
}

func (h *OrderHandler) GetBidStatus(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidID")

	status, err := h.orderUsecase.GetBidStatus(r.Context(), bidID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := dto.BidStatusResponse{
		BidID:  status.OrderID,
		Status: string(status.Status),
	}
	if status.Status == domain.StatusSuccessful {
		resp.PurchasePrice = status.ClearingPrice
		resp.SellerID = status.OtherPartyID
		if status.ClearingDate != nil {
			date := formatTimestamp(*status.ClearingDate)
			resp.PurchaseDate = &date
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) GetItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	status, err := h.orderUsecase.GetListingStatus(r.Context(), itemID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	resp := dto.ItemStatusResponse{
		ItemID: status.OrderID,
		Status: string(status.Status),
	}
	if status.Status == domain.StatusSold {
		resp.SalePrice = status.ClearingPrice
		resp.BuyerID = status.OtherPartyID
		if status.ClearingDate != nil {
			date := formatTimestamp(*status.ClearingDate)
			resp.SaleDate = &date
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02T15:04:05Z")
}
