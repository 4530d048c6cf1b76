package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog item.
type Product struct {
	ID          string
	Name        string
	Description string
	CostPrice   decimal.Decimal
	SalePrice   decimal.Decimal
	Currency    Currency
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Margin returns sale price minus cost price.
func (p *Product) Margin() decimal.Decimal {
	return p.SalePrice.Sub(p.CostPrice)
}

// MarginPercent returns the margin relative to cost, rounded to 2 places.
// A zero cost yields zero.
func (p *Product) MarginPercent() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.Margin().Div(p.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
}
