package usecase

import (
	"context"
	"time"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
)

// UserRepository defines data access for admin panel users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context) ([]*domain.User, error)
}

// ProductRepository defines data access for the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]*domain.Product, error)
}

// TransactionRepository defines data access for sales.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error)
	ListCompletedOn(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error)
}

// StatsRepository provides the snapshots the statistics report is built from.
type StatsRepository interface {
	// ListCompletedTransactions returns completed sales in [from, to) ordered by date.
	ListCompletedTransactions(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error)
	// ListActiveExpenses returns active expenses whose span touches the window.
	ListActiveExpenses(ctx context.Context, w analytics.Window) ([]*domain.Expense, error)
	// CompletedDateBounds returns the first and last completed sale instants.
	CompletedDateBounds(ctx context.Context) (analytics.Bounds, error)
	// CountByStatus counts all transactions regardless of date.
	CountByStatus(ctx context.Context) (domain.StatusCounts, error)
}

// ExpenseRepository defines data access for expenses and their types.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Expense, error)
	ListActive(ctx context.Context, w analytics.Window) ([]*domain.Expense, error)

	CreateType(ctx context.Context, t *domain.ExpenseType) error
	GetType(ctx context.Context, id string) (*domain.ExpenseType, error)
	DeleteType(ctx context.Context, id string) error
	ListTypes(ctx context.Context) ([]*domain.ExpenseType, error)
}

// ClientRepository defines data access for client profiles and connections.
type ClientRepository interface {
	ListSummaries(ctx context.Context) ([]*domain.ClientSummary, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	// UpsertFromTransactions stores a profile for a telegram handle seen in
	// transactions and returns domain.ErrUnknownClient otherwise.
	UpsertFromTransactions(ctx context.Context, client *domain.Client) error
	// EnsureTx makes sure a profile exists for telegram and returns its ID.
	EnsureTx(ctx context.Context, tx DBTx, id, telegram string) (string, error)
	CreateConnectionTx(ctx context.Context, tx DBTx, conn *domain.ClientConnection) error
	ListConnections(ctx context.Context) ([]*domain.ClientConnection, error)
}

// RateSource fetches the current exchange rate.
type RateSource interface {
	Current(ctx context.Context) (*domain.ExchangeRate, error)
}

// DBTx represents a database transaction.
type DBTx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (DBTx, error)
}

// Retrier retries operations that failed with transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

// Clock returns the current instant.
type Clock func() time.Time

// IdempotentResponse is a completed response replayed for a repeated key.
type IdempotentResponse struct {
	StatusCode int    `json:"status"`
	Body       []byte `json:"body"`
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// Reserve claims key for a new request. It returns the stored response
	// when the key already completed and domain.ErrRequestInProgress while
	// another request holds it.
	Reserve(ctx context.Context, key string, ttl time.Duration) (*IdempotentResponse, error)
	// Complete stores the final response of the request holding key.
	Complete(ctx context.Context, key string, resp IdempotentResponse, ttl time.Duration) error
	// Release drops the reservation so the request may be retried.
	Release(ctx context.Context, key string) error
}
