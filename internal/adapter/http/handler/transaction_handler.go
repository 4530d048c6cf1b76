package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// TransactionService defines the sales operations.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)
}

// StatsService computes the revenue and cost report.
type StatsService interface {
	ComputeStats(ctx context.Context, q usecase.StatsQuery) (*analytics.Report, error)
}

// TransactionHandler handles sales and statistics requests.
type TransactionHandler struct {
	transactions TransactionService
	stats        StatsService
	loc          *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Transaction dates
// sent without a zone are read in loc.
func NewTransactionHandler(transactions TransactionService, stats StatsService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{
		transactions: transactions,
		stats:        stats,
		loc:          loc,
	}
}

// List returns the most recent transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.ListTransactions(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txs))
}

// Create records a sale.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	tx, err := h.transactions.CreateTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, "failed to create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateTransactionResponse{
		Success:         true,
		TransactionID:   tx.ID,
		TransactionCode: tx.Code,
	})
}

// UpdateStatus changes the status of a transaction.
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id", "")
		return
	}

	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.transactions.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeDomainError(w, r, "failed to update status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, ID: id})
}

// Stats returns the revenue, cost and profit report for a date window.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	rate, err := parseRateQuery(r, "exchange_rate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	q := r.URL.Query()
	report, err := h.stats.ComputeStats(r.Context(), usecase.StatsQuery{
		DateFilter:   q.Get("date_filter"),
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		Currency:     q.Get("currency"),
		ExchangeRate: rate,
	})
	if err != nil {
		writeDomainError(w, r, "failed to compute stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromReport(report))
}
