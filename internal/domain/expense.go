package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionType controls how an expense is spread over calendar days.
type DistributionType string

const (
	// DistributionOneTime attributes the full amount to the start date.
	DistributionOneTime DistributionType = "one_time"
	// DistributionRecurring spreads the amount evenly over the expense span.
	DistributionRecurring DistributionType = "recurring"
)

// IsValid checks if the distribution type is known.
func (d DistributionType) IsValid() bool {
	return d == DistributionOneTime || d == DistributionRecurring
}

// ExpenseStatus represents whether an expense is amortized.
type ExpenseStatus string

const (
	ExpenseStatusActive   ExpenseStatus = "active"
	ExpenseStatusInactive ExpenseStatus = "inactive"
)

// OpenEndedSpanDays is the span assumed for expenses without an end date.
const OpenEndedSpanDays = 365

// ExpenseType is a user-defined expense category.
type ExpenseType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Expense represents a business cost, either paid once or spread over a period.
type Expense struct {
	ID              string
	ExpenseTypeID   string
	ExpenseTypeName string
	Amount          decimal.Decimal
	Currency        Currency
	Description     string
	StartDate       time.Time
	EndDate         *time.Time
	Distribution    DistributionType
	Status          ExpenseStatus
	CreatedAt       time.Time
}

// IsActive reports whether the expense takes part in amortization.
func (e *Expense) IsActive() bool {
	return e.Status == ExpenseStatusActive
}
