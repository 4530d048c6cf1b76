package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// RecentListLimit is how many rows the transaction and expense lists return
	RecentListLimit = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// UnknownClientName labels sales recorded without a client name
	UnknownClientName = "Не указан"
)
