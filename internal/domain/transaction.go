package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the state of a sale.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsValid checks if the status is one of the known statuses.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusPending, TransactionStatusFailed:
		return true
	}
	return false
}

// Transaction represents a recorded sale of a product to a client.
// Only completed transactions count towards revenue and profit.
type Transaction struct {
	ID             string
	Code           string
	ProductID      string
	ProductName    string
	ClientTelegram string
	ClientName     string
	Amount         decimal.Decimal
	CostPrice      decimal.Decimal
	Profit         decimal.Decimal
	Currency       Currency
	Status         TransactionStatus
	Notes          string
	OccurredAt     time.Time
	CreatedAt      time.Time
}

// IsCompleted reports whether the transaction contributes to revenue.
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// NewTransactionCode builds the human readable code shown in the admin panel.
func NewTransactionCode(at time.Time) string {
	return "TX-" + at.Format("20060102150405")
}

// StatusCounts holds the number of transactions in each status.
type StatusCounts struct {
	Completed int
	Pending   int
	Failed    int
}
