package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

type foodService interface {
	Resolve(ctx context.Context, query string) (*domain.Resolution, error)
	TopFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error)
}

// FoodHandler serves food lookup endpoints.
type FoodHandler struct {
	svc foodService
	log *slog.Logger
}

// NewFoodHandler creates a FoodHandler.
func NewFoodHandler(svc foodService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{svc: svc, log: logger.With("handler", "food")}
}

// Search handles GET /foods/search?query=.
func (h *FoodHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if domain.NormalizeQuery(query) == "" {
		writeError(w, http.StatusBadRequest, "Query parameter required")
		return
	}

	res, err := h.svc.Resolve(r.Context(), query)
	if err != nil {
		handleError(h.log, w, r, err, "Food not found")
		return
	}

	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Source:  res.Source.String(),
		Data:    toFoodResponses(res.Results),
	})
}

// Top handles GET /foods/top?limit=.
func (h *FoodHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			handleError(h.log, w, r, domain.NewValidationError("limit", "must be between 1 and 100"), "")
			return
		}
		limit = n
	}

	recs, err := h.svc.TopFoods(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err, "Food not found")
		return
	}
	writeData(w, http.StatusOK, toFoodResponses(recs))
}
