package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
)

const expenseSelect = `
	SELECT e.id, e.expense_type_id, et.name, e.amount, e.currency, e.description,
		e.start_date, e.end_date, e.distribution_type, e.status, e.created_at
	FROM expenses e
	JOIN expense_types et ON et.id = e.expense_type_id
`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db querier
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return newExpenseRepository(pool)
}

func newExpenseRepository(db querier) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	query := `
		INSERT INTO expenses (
			id, expense_type_id, amount, currency, description, start_date, end_date,
			distribution_type, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.ExpenseTypeID,
		decimalToNumeric(e.Amount),
		string(e.Currency),
		e.Description,
		timeToPgDate(e.StartDate),
		optionalDate(e.EndDate),
		string(e.Distribution),
		string(e.Status),
		e.CreatedAt,
	)
	if isPgError(err, pgErrForeignKeyViolation) {
		return domain.ErrExpenseTypeNotFound
	}

	return err
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListRecent returns the newest expenses with their type names.
func (r *ExpenseRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Expense, error) {
	query := expenseSelect + `
		ORDER BY e.start_date DESC, e.created_at DESC
		LIMIT $1
	`

	return queryExpenses(ctx, r.db, query, limit)
}

// ListActive returns active expenses whose span touches w.
func (r *ExpenseRepository) ListActive(ctx context.Context, w analytics.Window) ([]*domain.Expense, error) {
	return listActiveExpenses(ctx, r.db, w)
}

// listActiveExpenses mirrors analytics.Span: one-time expenses cover their
// start date, open-ended recurring ones a fixed number of days.
func listActiveExpenses(ctx context.Context, db querier, w analytics.Window) ([]*domain.Expense, error) {
	if w.Days() == 0 {
		return []*domain.Expense{}, nil
	}

	query := expenseSelect + `
		WHERE e.status = 'active'
			AND e.start_date <= $2
			AND CASE
				WHEN e.distribution_type = 'one_time' THEN e.start_date
				ELSE COALESCE(e.end_date, e.start_date + $3::int)
			END >= $1
		ORDER BY e.start_date, e.id
	`

	return queryExpenses(ctx, db, query,
		timeToPgDate(w.Start),
		timeToPgDate(w.End),
		domain.OpenEndedSpanDays-1,
	)
}

// CreateType inserts a new expense type.
func (r *ExpenseRepository) CreateType(ctx context.Context, t *domain.ExpenseType) error {
	query := `
		INSERT INTO expense_types (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Description, t.CreatedAt)
	if isPgError(err, pgErrUniqueViolation) {
		return domain.ErrExpenseTypeNameTaken
	}

	return err
}

// GetType retrieves an expense type by ID.
func (r *ExpenseRepository) GetType(ctx context.Context, id string) (*domain.ExpenseType, error) {
	query := `SELECT id, name, description, created_at FROM expense_types WHERE id = $1`

	var t domain.ExpenseType
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExpenseTypeNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// DeleteType removes an expense type that no expense references.
func (r *ExpenseRepository) DeleteType(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_types WHERE id = $1`, id)
	if isPgError(err, pgErrForeignKeyViolation) {
		return domain.ErrExpenseTypeInUse
	}
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseTypeNotFound
	}

	return nil
}

// ListTypes returns expense types ordered by name.
func (r *ExpenseRepository) ListTypes(ctx context.Context) ([]*domain.ExpenseType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, created_at FROM expense_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.ExpenseType, 0)
	for rows.Next() {
		var t domain.ExpenseType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, &t)
	}

	return types, rows.Err()
}

func queryExpenses(ctx context.Context, db querier, query string, args ...any) ([]*domain.Expense, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var (
		e            domain.Expense
		amount       pgtype.Numeric
		currency     string
		start        pgtype.Date
		end          pgtype.Date
		distribution string
		status       string
	)

	if err := row.Scan(
		&e.ID,
		&e.ExpenseTypeID,
		&e.ExpenseTypeName,
		&amount,
		&currency,
		&e.Description,
		&start,
		&end,
		&distribution,
		&status,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Amount = numericToDecimal(amount)
	e.Currency = domain.Currency(currency)
	e.StartDate = dateToTime(start)
	e.EndDate = dateToTimePtr(end)
	e.Distribution = domain.DistributionType(distribution)
	e.Status = domain.ExpenseStatus(status)

	return &e, nil
}
