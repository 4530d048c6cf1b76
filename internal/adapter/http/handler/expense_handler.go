package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// ExpenseService defines expense and expense type operations.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]*domain.Expense, error)
	CreateExpenseType(ctx context.Context, name, description string) (*domain.ExpenseType, error)
	DeleteExpenseType(ctx context.Context, id string) error
	ListExpenseTypes(ctx context.Context) ([]*domain.ExpenseType, error)
	DailyExpenses(ctx context.Context, q usecase.DailyExpensesQuery) ([]usecase.DailyExpense, error)
}

// ExpenseHandler handles expense HTTP requests.
type ExpenseHandler struct {
	expenses ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenses ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// List returns the most recent expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenses.ListExpenses(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// Create records an expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenses.CreateExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Success: true, ID: expense.ID})
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense id", "")
		return
	}

	if err := h.expenses.DeleteExpense(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, ID: id})
}

// ListTypes returns expense types ordered by name.
func (h *ExpenseHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.expenses.ListExpenseTypes(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list expense types", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseTypesFromDomain(types))
}

// CreateType adds an expense type.
func (h *ExpenseHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.expenses.CreateExpenseType(r.Context(), req.Name, req.Description)
	if err != nil {
		writeDomainError(w, r, "failed to create expense type", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Success: true, ID: t.ID})
}

// DeleteType removes an unused expense type.
func (h *ExpenseHandler) DeleteType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense type id", "")
		return
	}

	if err := h.expenses.DeleteExpenseType(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete expense type", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, ID: id})
}

// Daily returns amortized expense totals for every day of a range.
func (h *ExpenseHandler) Daily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start_date") == "" || q.Get("end_date") == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date required", "")
		return
	}

	rate, err := parseRateQuery(r, "exchange_rate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	days, err := h.expenses.DailyExpenses(r.Context(), usecase.DailyExpensesQuery{
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		Currency:     q.Get("currency"),
		ExchangeRate: rate,
	})
	if err != nil {
		writeDomainError(w, r, "failed to compute daily expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DailyExpensesFromUseCase(days))
}
