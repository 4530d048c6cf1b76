package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

// DailyEntry is one gap-filled day of the report.
type DailyEntry struct {
	Date      time.Time
	Count     int
	Revenue   float64
	Profit    float64
	Expenses  float64
	NetProfit float64
}

// Report is the dashboard statistics document. Monetary fields are
// rounded to 2 decimal places.
type Report struct {
	Filter       DateFilter
	Window       Window
	Currency     domain.Currency
	ExchangeRate float64

	// TotalTransactions keeps the legacy convention of counting completed
	// sales plus active expenses touching the window. TransactionsCount and
	// ExpensesCount hold the two parts separately.
	TotalTransactions int
	TransactionsCount int
	ExpensesCount     int

	TotalRevenue     float64
	TransactionCosts float64
	ExpenseCosts     float64
	TotalCosts       float64
	TotalProfit      float64

	StatusCounts domain.StatusCounts
	Products     []ProductStat
	Daily        []DailyEntry
}

// Input is everything Compute needs; it performs no I/O.
type Input struct {
	Filter       DateFilter
	Window       Window
	Conversion   Converter
	ExchangeRate float64
	Location     *time.Location
	Transactions []*domain.Transaction
	Expenses     []*domain.Expense
	StatusCounts domain.StatusCounts
}

// Compute merges aggregated sales with amortized expenses into a report
// covering every day of the window.
func Compute(in Input) *Report {
	w := in.Window
	agg := Aggregate(w, in.Transactions, in.Conversion, in.Location)
	amortized := Amortize(w, in.Expenses, in.Conversion)

	expensesCount := 0
	for _, e := range in.Expenses {
		if Intersects(e, w) {
			expensesCount++
		}
	}

	var expenseTotal float64
	daily := make([]DailyEntry, w.Days())
	for i := range daily {
		bucket := agg.Days[i]
		expenses := amortized[i]
		expenseTotal += expenses

		daily[i] = DailyEntry{
			Date:      w.Date(i),
			Count:     bucket.Count,
			Revenue:   Round2(bucket.Revenue),
			Profit:    Round2(bucket.Profit),
			Expenses:  Round2(expenses),
			NetProfit: Round2(bucket.Profit - expenses),
		}
	}

	products := make([]ProductStat, len(agg.Products))
	for i, p := range agg.Products {
		products[i] = ProductStat{
			Name:         p.Name,
			SalesCount:   p.SalesCount,
			TotalProfit:  Round2(p.TotalProfit),
			TotalRevenue: Round2(p.TotalRevenue),
		}
	}

	totalCosts := agg.Costs + expenseTotal

	return &Report{
		Filter:            in.Filter,
		Window:            w,
		Currency:          in.Conversion.Target,
		ExchangeRate:      in.ExchangeRate,
		TotalTransactions: agg.Count + expensesCount,
		TransactionsCount: agg.Count,
		ExpensesCount:     expensesCount,
		TotalRevenue:      Round2(agg.Revenue),
		TransactionCosts:  Round2(agg.Costs),
		ExpenseCosts:      Round2(expenseTotal),
		TotalCosts:        Round2(totalCosts),
		TotalProfit:       Round2(agg.Revenue - totalCosts),
		StatusCounts:      in.StatusCounts,
		Products:          products,
		Daily:             daily,
	}
}

// Round2 rounds v half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
