package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/storeledger/internal/domain"
)

var userRowColumns = []string{
	"id", "email", "full_name", "password_hash", "is_admin", "is_active", "last_login", "created_at", "updated_at",
}

func TestUserRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	user := &domain.User{
		ID:           "u1",
		Email:        "admin@example.com",
		FullName:     "Admin",
		PasswordHash: "hash",
		IsAdmin:      true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "admin@example.com", "Admin", "hash", true, true, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "dup@example.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	login := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("admin@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(
			"u1", "admin@example.com", "Admin", "hash", true, true,
			pgtype.Timestamptz{Time: login, Valid: true}, created, created,
		))

	user, err := repo.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" || !user.IsAdmin || !user.IsActive {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.LastLogin == nil || !user.LastLogin.Equal(login) {
		t.Fatalf("expected last login %v, got %v", login, user.LastLogin)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryUpdateMissing(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("u1", "a@example.com", "", "", false, false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.User{ID: "u1", Email: "a@example.com"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryUpdateLastLogin(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)
	at := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login = $2 WHERE id = $1")).
		WithArgs("u1", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateLastLogin(context.Background(), "u1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestUserRepositoryList(t *testing.T) {
	pool := newMockPool(t)
	repo := newUserRepository(pool)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at DESC")).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("u2", "b@example.com", "B", "h", false, true, nil, now, now).
			AddRow("u1", "a@example.com", "A", "h", true, false, nil, now.Add(-time.Hour), now))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u2" || users[1].ID != "u1" {
		t.Fatalf("unexpected users: %+v", users)
	}
	if users[0].LastLogin != nil {
		t.Fatalf("expected nil last login")
	}

	assertExpectations(t, pool)
}
