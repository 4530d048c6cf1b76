package domain

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = errors.New("amount must not be negative")
	ErrInvalidDate   = fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", ErrInvalidInput)

	// Catalog errors
	ErrProductNotFound = errors.New("product not found")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidStatus       = errors.New("invalid transaction status")

	// Expense errors
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrExpenseTypeNotFound  = errors.New("expense type not found")
	ErrInvalidDistribution  = errors.New("invalid distribution type")
	ErrExpenseTypeNameTaken = errors.New("expense type already exists")
	ErrExpenseTypeInUse     = errors.New("expense type is used by expenses")

	// Client errors
	ErrClientNotFound    = errors.New("client not found")
	ErrUnknownClient     = errors.New("client has no transactions")
	ErrInvalidImportance = errors.New("invalid client importance")

	// Request errors
	ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

	// Exchange rate errors
	ErrRateUnavailable = errors.New("exchange rate unavailable from all sources")
)
