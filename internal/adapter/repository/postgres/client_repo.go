package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// ClientRepository implements usecase.ClientRepository.
type ClientRepository struct {
	db querier
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return newClientRepository(pool)
}

func newClientRepository(db querier) *ClientRepository {
	return &ClientRepository{db: db}
}

// ListSummaries aggregates completed sales per telegram handle and joins the
// stored profile. Clients without a profile get the default importance.
func (r *ClientRepository) ListSummaries(ctx context.Context) ([]*domain.ClientSummary, error) {
	query := `
		SELECT COALESCE(c.id, ''), s.client_telegram, s.client_name, s.total_revenue, s.purchase_count,
			s.first_purchase, s.last_purchase, COALESCE(c.importance, 'medium'), COALESCE(c.comments, '')
		FROM (
			SELECT client_telegram,
				MAX(client_name) AS client_name,
				SUM(amount) AS total_revenue,
				COUNT(*) AS purchase_count,
				MIN(transaction_date) AS first_purchase,
				MAX(transaction_date) AS last_purchase
			FROM transactions
			WHERE status = 'completed' AND client_telegram <> ''
			GROUP BY client_telegram
		) s
		LEFT JOIN clients c ON c.client_telegram = s.client_telegram
		ORDER BY s.total_revenue DESC, s.client_telegram
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domain.ClientSummary, 0)
	for rows.Next() {
		var (
			s          domain.ClientSummary
			revenue    pgtype.Numeric
			importance string
		)
		if err := rows.Scan(
			&s.ID,
			&s.ClientTelegram,
			&s.ClientName,
			&revenue,
			&s.PurchaseCount,
			&s.FirstPurchase,
			&s.LastPurchase,
			&importance,
			&s.Comments,
		); err != nil {
			return nil, err
		}

		s.TotalRevenue = numericToDecimal(revenue)
		if s.PurchaseCount > 0 {
			s.AvgCheck = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.PurchaseCount))).Round(2)
		}
		s.Importance = domain.Importance(importance)
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// GetByID retrieves a stored client profile.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `
		SELECT id, client_telegram, client_name, importance, comments, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var (
		c          domain.Client
		importance string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ClientTelegram,
		&c.ClientName,
		&importance,
		&c.Comments,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}

	c.Importance = domain.Importance(importance)

	return &c, nil
}

// Update stores importance and comments of an existing profile.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET importance = $2, comments = $3, updated_at = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, string(c.Importance), c.Comments, c.UpdatedAt)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

// UpsertFromTransactions creates or updates the profile of a telegram handle
// that appears in transactions. The stored name is taken from its sales.
func (r *ClientRepository) UpsertFromTransactions(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (id, client_telegram, client_name, importance, comments, created_at, updated_at)
		SELECT $1, client_telegram, MAX(client_name), $3, $4, $5, $6
		FROM transactions
		WHERE client_telegram = $2
		GROUP BY client_telegram
		ON CONFLICT (client_telegram) DO UPDATE
		SET importance = EXCLUDED.importance,
			comments = EXCLUDED.comments,
			updated_at = EXCLUDED.updated_at
	`

	tag, err := r.db.Exec(ctx, query,
		c.ID,
		c.ClientTelegram,
		string(c.Importance),
		c.Comments,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrUnknownClient
	}

	return nil
}

// EnsureTx creates an empty profile for telegram unless one exists and
// returns the profile ID.
func (r *ClientRepository) EnsureTx(ctx context.Context, tx usecase.DBTx, id, telegram string) (string, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return "", err
	}

	insert := `
		INSERT INTO clients (id, client_telegram)
		VALUES ($1, $2)
		ON CONFLICT (client_telegram) DO NOTHING
	`
	if _, err := ptx.Exec(ctx, insert, id, telegram); err != nil {
		return "", err
	}

	var existing string
	if err := ptx.QueryRow(ctx, `SELECT id FROM clients WHERE client_telegram = $1`, telegram).Scan(&existing); err != nil {
		return "", err
	}

	return existing, nil
}

// CreateConnectionTx links two profiles. An existing pair is left unchanged.
func (r *ClientRepository) CreateConnectionTx(ctx context.Context, tx usecase.DBTx, conn *domain.ClientConnection) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO client_connections (id, client_id_from, client_id_to, connection_type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id_from, client_id_to) DO NOTHING
	`

	_, err = ptx.Exec(ctx, query,
		conn.ID,
		conn.ClientIDFrom,
		conn.ClientIDTo,
		conn.ConnectionType,
		conn.Description,
		conn.CreatedAt,
	)

	return err
}

// ListConnections returns connections with both telegram handles, newest first.
func (r *ClientRepository) ListConnections(ctx context.Context) ([]*domain.ClientConnection, error) {
	query := `
		SELECT cc.id, cc.client_id_from, cc.client_id_to, cf.client_telegram, ct.client_telegram,
			cc.connection_type, cc.description, cc.created_at
		FROM client_connections cc
		JOIN clients cf ON cf.id = cc.client_id_from
		JOIN clients ct ON ct.id = cc.client_id_to
		ORDER BY cc.created_at DESC, cc.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := make([]*domain.ClientConnection, 0)
	for rows.Next() {
		var c domain.ClientConnection
		if err := rows.Scan(
			&c.ID,
			&c.ClientIDFrom,
			&c.ClientIDTo,
			&c.ClientTelegramFrom,
			&c.ClientTelegramTo,
			&c.ConnectionType,
			&c.Description,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		conns = append(conns, &c)
	}

	return conns, rows.Err()
}
