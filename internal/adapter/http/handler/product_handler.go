package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/storeledger/internal/adapter/http/dto"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// ProductService defines the catalog operations.
type ProductService interface {
	CreateProduct(ctx context.Context, input usecase.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, input usecase.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

// ProductHandler handles product HTTP requests.
type ProductHandler struct {
	products ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List returns active products ordered by name.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list products", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductsFromDomain(products))
}

// Create adds a product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateProductResponse{Success: true, ProductID: product.ID})
}

// Update replaces the editable fields of a product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing product id", "")
		return
	}

	var req dto.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to update product", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, ID: product.ID})
}

// Delete hides a product from the catalog.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing product id", "")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete product", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, ID: id})
}
