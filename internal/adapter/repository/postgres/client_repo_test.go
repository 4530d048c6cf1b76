package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
)

func TestClientRepositoryListSummaries(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)
	first := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{
		"id", "client_telegram", "client_name", "total_revenue", "purchase_count",
		"first_purchase", "last_purchase", "importance", "comments",
	}
	pool.ExpectQuery(regexp.QuoteMeta("ORDER BY s.total_revenue DESC")).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("c1", "@vip", "VIP", numeric("1000"), 3, first, last, "high", "pays on time").
			AddRow("", "@new", "New", numeric("100"), 1, last, last, "medium", ""))

	summaries, err := repo.ListSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	vip := summaries[0]
	if vip.Importance != domain.ImportanceHigh || vip.PurchaseCount != 3 {
		t.Fatalf("unexpected summary: %+v", vip)
	}
	if !vip.AvgCheck.Equal(decimal.RequireFromString("333.33")) {
		t.Fatalf("expected avg check 333.33, got %s", vip.AvgCheck)
	}
	if summaries[1].ID != "" || summaries[1].Importance != domain.ImportanceMedium {
		t.Fatalf("unexpected default profile: %+v", summaries[1])
	}

	assertExpectations(t, pool)
}

func TestClientRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM clients")).
		WithArgs("c9").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "client_telegram", "client_name", "importance", "comments", "created_at", "updated_at",
		}))

	if _, err := repo.GetByID(context.Background(), "c9"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestClientRepositoryUpdate(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectExec(regexp.QuoteMeta("UPDATE clients SET importance = $2")).
		WithArgs("c1", "low", "slow payer", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &domain.Client{
		ID:         "c1",
		Importance: domain.ImportanceLow,
		Comments:   "slow payer",
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestClientRepositoryUpsertFromTransactions(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectExec(regexp.QuoteMeta("ON CONFLICT (client_telegram) DO UPDATE")).
		WithArgs("c1", "@vip", "high", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(regexp.QuoteMeta("ON CONFLICT (client_telegram) DO UPDATE")).
		WithArgs("c2", "@ghost", "medium", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.UpsertFromTransactions(context.Background(), &domain.Client{
		ID: "c1", ClientTelegram: "@vip", Importance: domain.ImportanceHigh, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = repo.UpsertFromTransactions(context.Background(), &domain.Client{
		ID: "c2", ClientTelegram: "@ghost", Importance: domain.ImportanceMedium, CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, domain.ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestClientRepositoryEnsureAndConnectInTransaction(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)
	manager := newTxManagerWithPool(pool)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	pool.ExpectExec(regexp.QuoteMeta("ON CONFLICT (client_telegram) DO NOTHING")).
		WithArgs("new-id", "@a").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	pool.ExpectQuery(regexp.QuoteMeta("SELECT id FROM clients WHERE client_telegram = $1")).
		WithArgs("@a").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("existing-id"))
	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO client_connections")).
		WithArgs("conn-1", "existing-id", "c2", "referral", "", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	ctx := context.Background()
	tx, err := manager.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	id, err := repo.EnsureTx(ctx, tx, "new-id", "@a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "existing-id" {
		t.Fatalf("expected existing profile id, got %s", id)
	}

	err = repo.CreateConnectionTx(ctx, tx, &domain.ClientConnection{
		ID:             "conn-1",
		ClientIDFrom:   id,
		ClientIDTo:     "c2",
		ConnectionType: "referral",
		CreatedAt:      now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestClientRepositoryListConnections(t *testing.T) {
	pool := newMockPool(t)
	repo := newClientRepository(pool)
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery(regexp.QuoteMeta("FROM client_connections cc")).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "client_id_from", "client_id_to", "from_telegram", "to_telegram",
			"connection_type", "description", "created_at",
		}).AddRow("conn-1", "c1", "c2", "@a", "@b", "referral", "", now))

	conns, err := repo.ListConnections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conns) != 1 || conns[0].ClientTelegramFrom != "@a" || conns[0].ClientTelegramTo != "@b" {
		t.Fatalf("unexpected connections: %+v", conns)
	}

	assertExpectations(t, pool)
}
