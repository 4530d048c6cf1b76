package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// TransactionUseCase records sales.
type TransactionUseCase struct {
	txRepo      TransactionRepository
	productRepo ProductRepository
	retrier     Retrier
	idGen       IDGenerator
	now         Clock
	metrics     *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txRepo TransactionRepository,
	productRepo ProductRepository,
	retrier Retrier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txRepo:      txRepo,
		productRepo: productRepo,
		retrier:     retrier,
		idGen:       idGen,
		now:         time.Now,
		metrics:     m,
	}
}

// WithClock overrides the time source, used by tests.
func (uc *TransactionUseCase) WithClock(now Clock) *TransactionUseCase {
	uc.now = now
	return uc
}

// CreateTransactionInput represents input for recording a sale.
type CreateTransactionInput struct {
	ProductID      string
	ClientTelegram string
	ClientName     string
	Status         string
	Notes          string
	// CustomAmount overrides the product sale price when set.
	CustomAmount *decimal.Decimal
	// Currency defaults to the product currency.
	Currency string
	// OccurredAt defaults to now.
	OccurredAt *time.Time
}

// CreateTransaction records a sale of a product. Cost is taken from the
// product, profit is amount minus cost.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	status := domain.TransactionStatus(strings.TrimSpace(input.Status))
	if status == "" {
		status = domain.TransactionStatusCompleted
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.Status)
	}

	if len(input.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", domain.ErrInvalidInput, domain.MaxNotesLength)
	}

	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	amount := product.SalePrice
	if input.CustomAmount != nil && !input.CustomAmount.IsZero() {
		if err := domain.ValidateMoney(*input.CustomAmount); err != nil {
			return nil, err
		}
		amount = *input.CustomAmount
	}

	currency, err := domain.ParseCurrency(input.Currency, product.Currency)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	occurredAt := now
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	tx := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		Code:           domain.NewTransactionCode(now),
		ProductID:      product.ID,
		ProductName:    product.Name,
		ClientTelegram: strings.TrimSpace(input.ClientTelegram),
		ClientName:     strings.TrimSpace(input.ClientName),
		Amount:         amount,
		CostPrice:      product.CostPrice,
		Profit:         amount.Sub(product.CostPrice),
		Currency:       currency,
		Status:         status,
		Notes:          input.Notes,
		OccurredAt:     occurredAt.UTC(),
		CreatedAt:      now.UTC(),
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.txRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(tx.Status)).Inc()
		uc.metrics.TransactionAmount.Observe(tx.Amount.InexactFloat64())
	}
	zerolog.Ctx(ctx).Info().
		Str("transaction_id", tx.ID).
		Str("code", tx.Code).
		Str("amount", tx.Amount.String()).
		Str("currency", string(tx.Currency)).
		Msg("transaction recorded")

	return tx, nil
}

// UpdateStatus changes the status of a sale.
func (uc *TransactionUseCase) UpdateStatus(ctx context.Context, id, status string) error {
	s := domain.TransactionStatus(strings.TrimSpace(status))
	if !s.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	if err := uc.txRepo.UpdateStatus(ctx, id, s); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.StatusChanges.WithLabelValues(string(s)).Inc()
	}
	return nil
}

// ListTransactions lists the most recent sales with their product names.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	return uc.txRepo.ListRecent(ctx, RecentListLimit)
}
