package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
)

// CostUseCase explains what a single day cost the business.
type CostUseCase struct {
	txRepo       TransactionRepository
	expenseRepo  ExpenseRepository
	rates        RateSource
	baseCurrency domain.Currency
	fallbackRate float64
	loc          *time.Location
}

// NewCostUseCase creates a new CostUseCase.
func NewCostUseCase(
	txRepo TransactionRepository,
	expenseRepo ExpenseRepository,
	rates RateSource,
	baseCurrency domain.Currency,
	fallbackRate float64,
	loc *time.Location,
) *CostUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &CostUseCase{
		txRepo:       txRepo,
		expenseRepo:  expenseRepo,
		rates:        rates,
		baseCurrency: baseCurrency,
		fallbackRate: fallbackRate,
		loc:          loc,
	}
}

// TransactionCost is one completed sale of the day in the base currency.
type TransactionCost struct {
	ID          string
	Code        string
	ProductName string
	ClientName  string
	Amount      float64
	CostPrice   float64
	Currency    domain.Currency
}

// ExpenseShare is the part of an expense attributed to the day.
type ExpenseShare struct {
	Expense *domain.Expense
	Amount  float64
}

// CostBreakdown lists the costs of one day. Totals are rounded to 2 places.
type CostBreakdown struct {
	Date                  time.Time
	ExchangeRate          float64
	TransactionCosts      []TransactionCost
	Expenses              []ExpenseShare
	TotalTransactionCosts float64
	TotalExpenses         float64
	TotalCosts            float64
}

// DailyBreakdown returns the transaction costs and expense shares of date.
func (uc *CostUseCase) DailyBreakdown(ctx context.Context, date string, exchangeRate *float64) (*CostBreakdown, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("%w: date parameter is required", domain.ErrInvalidInput)
	}

	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}

	var rate float64
	if exchangeRate != nil {
		if err := domain.ValidateRate(*exchangeRate); err != nil {
			return nil, err
		}
		rate = *exchangeRate
	} else {
		rate = resolveRate(ctx, uc.rates, uc.fallbackRate)
	}

	conv := analytics.Converter{Target: uc.baseCurrency, Rate: rate}
	window := analytics.NewWindow(day, day)
	from, to := window.TimeRange(uc.loc)

	txs, err := uc.txRepo.ListCompletedOn(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load completed transactions: %w", err)
	}

	expenses, err := uc.expenseRepo.ListActive(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("load active expenses: %w", err)
	}

	result := &CostBreakdown{
		Date:             day,
		ExchangeRate:     rate,
		TransactionCosts: make([]TransactionCost, 0, len(txs)),
		Expenses:         make([]ExpenseShare, 0, len(expenses)),
	}

	var txTotal float64
	for _, tx := range txs {
		client := tx.ClientName
		if client == "" {
			client = UnknownClientName
		}
		cost := conv.Convert(tx.CostPrice.InexactFloat64(), tx.Currency)
		result.TransactionCosts = append(result.TransactionCosts, TransactionCost{
			ID:          tx.ID,
			Code:        tx.Code,
			ProductName: tx.ProductName,
			ClientName:  client,
			Amount:      conv.Convert(tx.Amount.InexactFloat64(), tx.Currency),
			CostPrice:   cost,
			Currency:    tx.Currency,
		})
		txTotal += cost
	}

	var expenseTotal float64
	for _, e := range expenses {
		share := analytics.DailyShare(e, day, conv)
		if share == 0 {
			continue
		}
		result.Expenses = append(result.Expenses, ExpenseShare{Expense: e, Amount: analytics.Round2(share)})
		expenseTotal += share
	}

	result.TotalTransactionCosts = analytics.Round2(txTotal)
	result.TotalExpenses = analytics.Round2(expenseTotal)
	result.TotalCosts = analytics.Round2(txTotal + expenseTotal)

	return result, nil
}
