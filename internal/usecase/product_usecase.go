package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// ProductUseCase manages the product catalog.
type ProductUseCase struct {
	productRepo  ProductRepository
	idGen        IDGenerator
	baseCurrency domain.Currency
	now          Clock
	metrics      *metrics.Metrics
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo ProductRepository, idGen IDGenerator, baseCurrency domain.Currency, m *metrics.Metrics) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		idGen:        idGen,
		baseCurrency: baseCurrency,
		now:          time.Now,
		metrics:      m,
	}
}

// ProductInput holds the editable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	CostPrice   decimal.Decimal
	SalePrice   decimal.Decimal
	Currency    string
}

func (uc *ProductUseCase) validate(input ProductInput) (domain.Currency, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return "", err
	}
	if err := domain.ValidateMoney(input.CostPrice); err != nil {
		return "", err
	}
	if err := domain.ValidateMoney(input.SalePrice); err != nil {
		return "", err
	}
	return domain.ParseCurrency(input.Currency, uc.baseCurrency)
}

// CreateProduct adds an active product to the catalog.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	currency, err := uc.validate(input)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	product := &domain.Product{
		ID:          uc.idGen.Generate(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CostPrice:   input.CostPrice,
		SalePrice:   input.SalePrice,
		Currency:    currency,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ProductsCreated.Inc()
	}
	zerolog.Ctx(ctx).Info().Str("product_id", product.ID).Str("name", product.Name).Msg("product created")

	return product, nil
}

// UpdateProduct replaces the editable fields of an existing product.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	currency, err := uc.validate(input)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.CostPrice = input.CostPrice
	product.SalePrice = input.SalePrice
	product.Currency = currency
	product.UpdatedAt = uc.now().UTC()

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct hides a product from the catalog. Past sales keep
// referencing it.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	return uc.productRepo.Deactivate(ctx, id, uc.now().UTC())
}

// ListProducts lists active products ordered by name.
func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return uc.productRepo.ListActive(ctx)
}
