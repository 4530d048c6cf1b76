package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
)

// RateProvider fetches the current exchange rate.
type RateProvider interface {
	Current(ctx context.Context) (*domain.ExchangeRate, error)
}

// ExchangeRateHandler serves the current exchange rate.
type ExchangeRateHandler struct {
	rates        RateProvider
	fallbackRate float64
}

// NewExchangeRateHandler creates a new ExchangeRateHandler. fallbackRate is
// reported to clients when no source answers.
func NewExchangeRateHandler(rates RateProvider, fallbackRate float64) *ExchangeRateHandler {
	return &ExchangeRateHandler{
		rates:        rates,
		fallbackRate: fallbackRate,
	}
}

// Current returns the latest rate.
func (h *ExchangeRateHandler) Current(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.Current(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("exchange rate unavailable")
		writeJSON(w, http.StatusInternalServerError, dto.RateUnavailableResponse{
			Error:        "All sources failed",
			FallbackRate: h.fallbackRate,
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.ExchangeRateFromDomain(rate))
}
