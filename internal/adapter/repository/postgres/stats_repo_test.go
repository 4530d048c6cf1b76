package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
)

func TestStatsRepositoryCompletedDateBounds(t *testing.T) {
	pool := newMockPool(t)
	repo := newStatsRepository(pool)
	lo := time.Date(2026, 1, 3, 9, 0, 0, 0, time.UTC)
	hi := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT MIN(transaction_date), MAX(transaction_date)")).
		WillReturnRows(pgxmock.NewRows([]string{"min", "max"}).
			AddRow(pgtype.Timestamptz{Time: lo, Valid: true}, pgtype.Timestamptz{Time: hi, Valid: true}))

	bounds, err := repo.CompletedDateBounds(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bounds.Found || !bounds.Min.Equal(lo) || !bounds.Max.Equal(hi) {
		t.Fatalf("unexpected bounds: %+v", bounds)
	}

	assertExpectations(t, pool)
}

func TestStatsRepositoryCompletedDateBoundsEmpty(t *testing.T) {
	pool := newMockPool(t)
	repo := newStatsRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("SELECT MIN(transaction_date), MAX(transaction_date)")).
		WillReturnRows(pgxmock.NewRows([]string{"min", "max"}).AddRow(nil, nil))

	bounds, err := repo.CompletedDateBounds(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounds.Found {
		t.Fatalf("expected no bounds, got %+v", bounds)
	}

	assertExpectations(t, pool)
}

func TestStatsRepositoryCountByStatus(t *testing.T) {
	pool := newMockPool(t)
	repo := newStatsRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status = 'completed')")).
		WillReturnRows(pgxmock.NewRows([]string{"completed", "pending", "failed"}).AddRow(7, 2, 1))

	counts, err := repo.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts != (domain.StatusCounts{Completed: 7, Pending: 2, Failed: 1}) {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	assertExpectations(t, pool)
}

func TestStatsRepositorySharesTransactionAndExpenseQueries(t *testing.T) {
	pool := newMockPool(t)
	repo := newStatsRepository(pool)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	w := analytics.NewWindow(from, to.AddDate(0, 0, -1))

	pool.ExpectQuery(regexp.QuoteMeta("t.status = 'completed'")).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(transactionRowColumns).
			AddRow("t1", "TX-1", "p1", "VPN", "@a", "A", numeric("300"), numeric("100"), numeric("200"),
				"RUB", "completed", "", from.Add(time.Hour), from))
	pool.ExpectQuery(regexp.QuoteMeta("WHERE e.status = 'active'")).
		WithArgs(timeToPgDate(w.Start), timeToPgDate(w.End), domain.OpenEndedSpanDays-1).
		WillReturnRows(pgxmock.NewRows(expenseRowColumns))

	txs, err := repo.ListCompletedTransactions(context.Background(), from, to)
	if err != nil || len(txs) != 1 {
		t.Fatalf("unexpected transactions: %v, %v", txs, err)
	}

	expenses, err := repo.ListActiveExpenses(context.Background(), w)
	if err != nil || len(expenses) != 0 {
		t.Fatalf("unexpected expenses: %v, %v", expenses, err)
	}

	assertExpectations(t, pool)
}
