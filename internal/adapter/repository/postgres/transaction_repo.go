package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/storeledger/internal/domain"
)

const transactionSelect = `
	SELECT t.id, t.code, t.product_id, COALESCE(p.name, ''), t.client_telegram, t.client_name,
		t.amount, t.cost_price, t.profit, t.currency, t.status, t.notes, t.transaction_date, t.created_at
	FROM transactions t
	LEFT JOIN products p ON p.id = t.product_id
`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db querier
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db querier) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new sale.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, code, product_id, client_telegram, client_name, amount, cost_price, profit,
			currency, status, notes, transaction_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.Code,
		tx.ProductID,
		tx.ClientTelegram,
		tx.ClientName,
		decimalToNumeric(tx.Amount),
		decimalToNumeric(tx.CostPrice),
		decimalToNumeric(tx.Profit),
		string(tx.Currency),
		string(tx.Status),
		tx.Notes,
		tx.OccurredAt,
		tx.CreatedAt,
	)
	if isPgError(err, pgErrForeignKeyViolation) {
		return domain.ErrProductNotFound
	}

	return err
}

// UpdateStatus changes the status of a sale.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE transactions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// ListRecent returns the newest sales of any status.
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	query := transactionSelect + `
		ORDER BY t.transaction_date DESC, t.id DESC
		LIMIT $1
	`

	return queryTransactions(ctx, r.db, query, limit)
}

// ListCompletedOn returns completed sales with transaction_date in [from, to).
func (r *TransactionRepository) ListCompletedOn(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	return listCompletedTransactions(ctx, r.db, from, to)
}

func listCompletedTransactions(ctx context.Context, db querier, from, to time.Time) ([]*domain.Transaction, error) {
	query := transactionSelect + `
		WHERE t.status = 'completed' AND t.transaction_date >= $1 AND t.transaction_date < $2
		ORDER BY t.transaction_date, t.id
	`

	return queryTransactions(ctx, db, query, from, to)
}

func queryTransactions(ctx context.Context, db querier, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		amount   pgtype.Numeric
		cost     pgtype.Numeric
		profit   pgtype.Numeric
		currency string
		status   string
	)

	if err := row.Scan(
		&tx.ID,
		&tx.Code,
		&tx.ProductID,
		&tx.ProductName,
		&tx.ClientTelegram,
		&tx.ClientName,
		&amount,
		&cost,
		&profit,
		&currency,
		&status,
		&tx.Notes,
		&tx.OccurredAt,
		&tx.CreatedAt,
	); err != nil {
		return nil, err
	}

	tx.Amount = numericToDecimal(amount)
	tx.CostPrice = numericToDecimal(cost)
	tx.Profit = numericToDecimal(profit)
	tx.Currency = domain.Currency(currency)
	tx.Status = domain.TransactionStatus(status)

	return &tx, nil
}
