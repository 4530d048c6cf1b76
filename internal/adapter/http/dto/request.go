package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyTokenRequest represents a token verification request.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// ResetPasswordRequest represents a password reset request.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// CreateUserRequest represents a request to create a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
		IsAdmin:  r.IsAdmin,
	}
}

// UpdateUserRequest represents a partial user update. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateUserRequest) ToUseCaseInput(id string) usecase.UpdateUserInput {
	return usecase.UpdateUserInput{
		ID:       id,
		IsActive: r.IsActive,
		IsAdmin:  r.IsAdmin,
		Password: r.Password,
	}
}

// ProductRequest represents a product create or update request.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Currency    string          `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *ProductRequest) ToUseCaseInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		CostPrice:   r.CostPrice,
		SalePrice:   r.SalePrice,
		Currency:    r.Currency,
	}
}

// CreateTransactionRequest represents a request to record a sale.
type CreateTransactionRequest struct {
	ProductID       string           `json:"product_id"`
	ClientTelegram  string           `json:"client_telegram"`
	ClientName      string           `json:"client_name"`
	Status          string           `json:"status"`
	Notes           string           `json:"notes"`
	CustomAmount    *decimal.Decimal `json:"custom_amount,omitempty"`
	Currency        string           `json:"currency"`
	TransactionDate string           `json:"transaction_date,omitempty"`
}

// transactionDateLayouts are accepted for transaction_date, most precise first.
var transactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToUseCaseInput converts to use case input. Dates without a zone are
// taken in loc.
func (r *CreateTransactionRequest) ToUseCaseInput(loc *time.Location) (usecase.CreateTransactionInput, error) {
	input := usecase.CreateTransactionInput{
		ProductID:      r.ProductID,
		ClientTelegram: r.ClientTelegram,
		ClientName:     r.ClientName,
		Status:         r.Status,
		Notes:          r.Notes,
		CustomAmount:   r.CustomAmount,
		Currency:       r.Currency,
	}

	raw := strings.TrimSpace(r.TransactionDate)
	if raw == "" {
		return input, nil
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range transactionDateLayouts {
		if at, err := time.ParseInLocation(layout, raw, loc); err == nil {
			input.OccurredAt = &at
			return input, nil
		}
	}

	return input, fmt.Errorf("%w: invalid transaction_date %q", domain.ErrInvalidInput, raw)
}

// UpdateStatusRequest represents a transaction status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	ExpenseTypeID    string          `json:"expense_type_id"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date,omitempty"`
	DistributionType string          `json:"distribution_type"`
	Currency         string          `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput() usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		ExpenseTypeID: r.ExpenseTypeID,
		Amount:        r.Amount,
		Description:   r.Description,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Distribution:  r.DistributionType,
		Currency:      r.Currency,
	}
}

// CreateExpenseTypeRequest represents a request to add an expense category.
type CreateExpenseTypeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateClientProfileRequest represents a client profile update.
type UpdateClientProfileRequest struct {
	ClientID       string `json:"client_id,omitempty"`
	ClientTelegram string `json:"client_telegram"`
	Importance     string `json:"importance"`
	Comments       string `json:"comments"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateClientProfileRequest) ToUseCaseInput() usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		ClientID:       r.ClientID,
		ClientTelegram: r.ClientTelegram,
		Importance:     r.Importance,
		Comments:       r.Comments,
	}
}

// CreateConnectionRequest represents a request to link two clients.
type CreateConnectionRequest struct {
	ClientTelegramFrom string `json:"client_telegram_from"`
	ClientTelegramTo   string `json:"client_telegram_to"`
	ConnectionType     string `json:"connection_type"`
	Description        string `json:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateConnectionRequest) ToUseCaseInput() usecase.AddConnectionInput {
	return usecase.AddConnectionInput{
		ClientTelegramFrom: r.ClientTelegramFrom,
		ClientTelegramTo:   r.ClientTelegramTo,
		ConnectionType:     r.ConnectionType,
		Description:        r.Description,
	}
}
