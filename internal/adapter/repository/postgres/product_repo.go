package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/storeledger/internal/domain"
)

const productColumns = `id, name, description, cost_price, sale_price, currency, is_active, created_at, updated_at`

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	db querier
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return newProductRepository(pool)
}

func newProductRepository(db querier) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		decimalToNumeric(p.CostPrice),
		decimalToNumeric(p.SalePrice),
		string(p.Currency),
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)

	return err
}

// GetByID retrieves a product regardless of its active flag.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Update stores the editable product fields.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, cost_price = $4, sale_price = $5, currency = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		decimalToNumeric(p.CostPrice),
		decimalToNumeric(p.SalePrice),
		string(p.Currency),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Deactivate hides a product from the catalog. Past transactions keep
// referencing it.
func (r *ProductRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// ListActive returns active products ordered by name.
func (r *ProductRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		cost     pgtype.Numeric
		sale     pgtype.Numeric
		currency string
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&cost,
		&sale,
		&currency,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.CostPrice = numericToDecimal(cost)
	p.SalePrice = numericToDecimal(sale)
	p.Currency = domain.Currency(currency)

	return &p, nil
}
