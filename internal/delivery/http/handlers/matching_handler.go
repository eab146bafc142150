package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tradeoverflow/trade-service/internal/delivery/http/dto"
	"github.com/tradeoverflow/trade-service/internal/usecase/matching"
)

type MatchingHandler struct {
	log             *slog.Logger
	matchingUsecase *matching.Usecase
}

func NewMatchingHandler(log *slog.Logger, matchingUsecase *matching.Usecase) *MatchingHandler {
	return &MatchingHandler{
		log:             log,
		matchingUsecase: matchingUsecase,
	}
}

func (h *MatchingHandler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Post("/process", h.ProcessTrades)

	return router
}

// ProcessTrades triggers one matching cycle. Per-category failures are
// reported through logs and metrics only; the trigger answers 200 with
// the summary as long as discovery succeeded.
func (h *MatchingHandler) ProcessTrades(w http.ResponseWriter, r *http.Request) {
	summary, err := h.matchingUsecase.RunCycle(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CycleSummaryResponse{
		CategoriesProcessed: summary.CategoriesProcessed,
		TradesCommitted:     summary.TradesCommitted,
		CategoriesFailed:    summary.CategoriesFailed,
	})
}
