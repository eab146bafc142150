package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradeoverflow/trade-service/internal/delivery/http/dto"
	"github.com/tradeoverflow/trade-service/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP status codes.
// Anything outside the taxonomy is an internal failure: the cause stays
// in the server log and the client gets a generic message.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Missing required fields"})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Order not found"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Message: "Cannot change the price of an order that has already been fulfilled"})
	default:
		log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
