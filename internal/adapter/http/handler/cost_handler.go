package handler

import (
	"context"
	"net/http"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/usecase"
)

// CostService explains the costs of a single day.
type CostService interface {
	DailyBreakdown(ctx context.Context, date string, exchangeRate *float64) (*usecase.CostBreakdown, error)
}

// CostHandler handles cost breakdown requests.
type CostHandler struct {
	costs CostService
}

// NewCostHandler creates a new CostHandler.
func NewCostHandler(costs CostService) *CostHandler {
	return &CostHandler{costs: costs}
}

// Daily returns the transaction costs and expense shares of one day.
func (h *CostHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date parameter is required", "")
		return
	}

	rate, err := parseRateQuery(r, "exchange_rate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	breakdown, err := h.costs.DailyBreakdown(r.Context(), date, rate)
	if err != nil {
		writeDomainError(w, r, "failed to compute daily costs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CostBreakdownFromUseCase(breakdown))
}
