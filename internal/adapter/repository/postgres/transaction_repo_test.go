package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

var transactionRowColumns = []string{
	"id", "code", "product_id", "product_name", "client_telegram", "client_name",
	"amount", "cost_price", "profit", "currency", "status", "notes", "transaction_date", "created_at",
}

func TestTransactionRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)
	at := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs("t1", "TX-20261015103000", "p1", "@buyer", "Buyer",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"RUB", "completed", "", at, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), &domain.Transaction{
		ID:             "t1",
		Code:           domain.NewTransactionCode(at),
		ProductID:      "p1",
		ClientTelegram: "@buyer",
		ClientName:     "Buyer",
		Amount:         decimal.NewFromInt(300),
		CostPrice:      decimal.NewFromInt(100),
		Profit:         decimal.NewFromInt(200),
		Currency:       domain.CurrencyRUB,
		Status:         domain.TransactionStatusCompleted,
		OccurredAt:     at,
		CreatedAt:      at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryCreateUnknownProduct(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)

	args := make([]any, 13)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	err := repo.Create(context.Background(), &domain.Transaction{ID: "t1", ProductID: "gone"})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryUpdateStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = $2")).
		WithArgs("t1", "failed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = $2")).
		WithArgs("t2", "pending").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateStatus(context.Background(), "t1", domain.TransactionStatusFailed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := repo.UpdateStatus(context.Background(), "t2", domain.TransactionStatusPending)
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListRecent(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows(transactionRowColumns).
			AddRow("t2", "TX-2", "p1", "VPN", "", "", numeric("50"), numeric("10"), numeric("40"),
				"USD", "pending", "note", at, at).
			AddRow("t1", "TX-1", "p1", "VPN", "@a", "A", numeric("300"), numeric("100"), numeric("200"),
				"RUB", "completed", "", at.Add(-time.Hour), at))

	txs, err := repo.ListRecent(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ProductName != "VPN" || txs[0].Status != domain.TransactionStatusPending || txs[0].Currency != domain.CurrencyUSD {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	if !txs[1].Profit.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected profit 200, got %s", txs[1].Profit)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryListCompletedOn(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)
	from := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	pool.ExpectQuery(regexp.QuoteMeta("t.status = 'completed' AND t.transaction_date >= $1 AND t.transaction_date < $2")).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(transactionRowColumns))

	txs, err := repo.ListCompletedOn(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", txs)
	}

	assertExpectations(t, pool)
}

func TestTransactionRepositoryQueryError(t *testing.T) {
	pool := newMockPool(t)
	repo := newTransactionRepository(pool)
	boom := errors.New("connection reset")

	pool.ExpectQuery(regexp.QuoteMeta("LIMIT $1")).
		WithArgs(10).
		WillReturnError(boom)

	if _, err := repo.ListRecent(context.Background(), 10); !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}

	assertExpectations(t, pool)
}
