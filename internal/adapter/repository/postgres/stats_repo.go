package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
)

// StatsRepository implements usecase.StatsRepository.
type StatsRepository struct {
	db querier
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return newStatsRepository(pool)
}

func newStatsRepository(db querier) *StatsRepository {
	return &StatsRepository{db: db}
}

// ListCompletedTransactions returns completed sales in [from, to) ordered by date.
func (r *StatsRepository) ListCompletedTransactions(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	return listCompletedTransactions(ctx, r.db, from, to)
}

// ListActiveExpenses returns active expenses whose span touches w.
func (r *StatsRepository) ListActiveExpenses(ctx context.Context, w analytics.Window) ([]*domain.Expense, error) {
	return listActiveExpenses(ctx, r.db, w)
}

// CompletedDateBounds returns the first and last completed sale instants.
func (r *StatsRepository) CompletedDateBounds(ctx context.Context) (analytics.Bounds, error) {
	query := `
		SELECT MIN(transaction_date), MAX(transaction_date)
		FROM transactions
		WHERE status = 'completed'
	`

	var lo, hi pgtype.Timestamptz
	if err := r.db.QueryRow(ctx, query).Scan(&lo, &hi); err != nil {
		return analytics.Bounds{}, err
	}

	if !lo.Valid || !hi.Valid {
		return analytics.Bounds{}, nil
	}

	return analytics.Bounds{Min: lo.Time, Max: hi.Time, Found: true}, nil
}

// CountByStatus counts all transactions regardless of date.
func (r *StatsRepository) CountByStatus(ctx context.Context) (domain.StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM transactions
	`

	var counts domain.StatusCounts
	err := r.db.QueryRow(ctx, query).Scan(&counts.Completed, &counts.Pending, &counts.Failed)

	return counts, err
}
