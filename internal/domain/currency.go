package domain

import (
	"fmt"
	"strings"
)

// Currency is a closed set of currencies amounts may be stored in.
type Currency string

const (
	// CurrencyRUB is the base reporting currency.
	CurrencyRUB Currency = "RUB"
	// CurrencyUSD is the foreign currency converted through the daily rate.
	CurrencyUSD Currency = "USD"
)

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return c == CurrencyRUB || c == CurrencyUSD
}

// ParseCurrency normalizes a currency code, falling back to def when empty.
func ParseCurrency(code string, def Currency) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return def, nil
	}

	c := Currency(code)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, code)
	}

	return c, nil
}
