package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// ExpenseUseCase manages expenses, expense types and their daily distribution.
type ExpenseUseCase struct {
	expenseRepo  ExpenseRepository
	rates        RateSource
	idGen        IDGenerator
	baseCurrency domain.Currency
	fallbackRate float64
	now          Clock
	metrics      *metrics.Metrics
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	expenseRepo ExpenseRepository,
	rates RateSource,
	idGen IDGenerator,
	baseCurrency domain.Currency,
	fallbackRate float64,
	m *metrics.Metrics,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenseRepo:  expenseRepo,
		rates:        rates,
		idGen:        idGen,
		baseCurrency: baseCurrency,
		fallbackRate: fallbackRate,
		now:          time.Now,
		metrics:      m,
	}
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	ExpenseTypeID string
	Amount        decimal.Decimal
	Description   string
	StartDate     string
	EndDate       string
	Distribution  string
	Currency      string
}

// CreateExpense records a new active expense.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateMoney(input.Amount); err != nil {
		return nil, err
	}

	distribution := domain.DistributionType(strings.TrimSpace(input.Distribution))
	if distribution == "" {
		distribution = domain.DistributionOneTime
	}
	if !distribution.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDistribution, input.Distribution)
	}

	currency, err := domain.ParseCurrency(input.Currency, uc.baseCurrency)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.StartDate) == "" {
		return nil, fmt.Errorf("%w: start_date is required", domain.ErrInvalidInput)
	}
	start, err := domain.ParseDate(input.StartDate)
	if err != nil {
		return nil, err
	}

	var end *time.Time
	if strings.TrimSpace(input.EndDate) != "" {
		e, err := domain.ParseDate(input.EndDate)
		if err != nil {
			return nil, err
		}
		if e.Before(start) {
			return nil, fmt.Errorf("%w: end_date precedes start_date", domain.ErrInvalidInput)
		}
		end = &e
	}

	expenseType, err := uc.expenseRepo.GetType(ctx, input.ExpenseTypeID)
	if err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		ID:              uc.idGen.Generate(),
		ExpenseTypeID:   expenseType.ID,
		ExpenseTypeName: expenseType.Name,
		Amount:          input.Amount,
		Currency:        currency,
		Description:     input.Description,
		StartDate:       start,
		EndDate:         end,
		Distribution:    distribution,
		Status:          domain.ExpenseStatusActive,
		CreatedAt:       uc.now().UTC(),
	}

	if err := uc.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpensesCreated.WithLabelValues(string(distribution)).Inc()
	}
	zerolog.Ctx(ctx).Info().
		Str("expense_id", expense.ID).
		Str("distribution", string(distribution)).
		Msg("expense created")

	return expense, nil
}

// DeleteExpense removes an expense.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	return uc.expenseRepo.Delete(ctx, id)
}

// ListExpenses lists the most recent expenses with their type names.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	return uc.expenseRepo.ListRecent(ctx, RecentListLimit)
}

// CreateExpenseType adds an expense category.
func (uc *ExpenseUseCase) CreateExpenseType(ctx context.Context, name, description string) (*domain.ExpenseType, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	t := &domain.ExpenseType{
		ID:          uc.idGen.Generate(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   uc.now().UTC(),
	}

	if err := uc.expenseRepo.CreateType(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// DeleteExpenseType removes an expense category.
func (uc *ExpenseUseCase) DeleteExpenseType(ctx context.Context, id string) error {
	return uc.expenseRepo.DeleteType(ctx, id)
}

// ListExpenseTypes lists expense categories ordered by name.
func (uc *ExpenseUseCase) ListExpenseTypes(ctx context.Context) ([]*domain.ExpenseType, error) {
	return uc.expenseRepo.ListTypes(ctx)
}

// DailyExpensesQuery selects the range for the daily expense distribution.
type DailyExpensesQuery struct {
	StartDate    string
	EndDate      string
	Currency     string
	ExchangeRate *float64
}

// DailyExpense is the amortized expense total of one day.
type DailyExpense struct {
	Date  time.Time
	Total float64
}

// DailyExpenses distributes active expenses over every day of the range.
func (uc *ExpenseUseCase) DailyExpenses(ctx context.Context, q DailyExpensesQuery) ([]DailyExpense, error) {
	if strings.TrimSpace(q.StartDate) == "" || strings.TrimSpace(q.EndDate) == "" {
		return nil, fmt.Errorf("%w: start_date and end_date required", domain.ErrInvalidInput)
	}

	window, err := analytics.ResolveWindow(analytics.FilterCustom, q.StartDate, q.EndDate, uc.now(), analytics.Bounds{})
	if err != nil {
		return nil, err
	}

	target, err := domain.ParseCurrency(q.Currency, uc.baseCurrency)
	if err != nil {
		return nil, err
	}

	var rate float64
	if q.ExchangeRate != nil {
		if err := domain.ValidateRate(*q.ExchangeRate); err != nil {
			return nil, err
		}
		rate = *q.ExchangeRate
	} else {
		rate = resolveRate(ctx, uc.rates, uc.fallbackRate)
	}

	conv := analytics.Converter{Target: target, Rate: rate}
	if target != uc.baseCurrency {
		conv.Rate = 1 / rate
	}

	result := make([]DailyExpense, window.Days())
	if len(result) == 0 {
		return result, nil
	}

	expenses, err := uc.expenseRepo.ListActive(ctx, window)
	if err != nil {
		return nil, err
	}

	amounts := analytics.Amortize(window, expenses, conv)
	for i, amount := range amounts {
		result[i] = DailyExpense{Date: window.Date(i), Total: analytics.Round2(amount)}
	}

	return result, nil
}
