package domain

import (
	"fmt"
	"math"
	"time"
)

// ExchangeRate is the number of base currency units per foreign unit.
type ExchangeRate struct {
	Rate   float64
	Date   time.Time
	Source string
}

// ValidateRate checks that a rate and its inverse are finite and positive,
// so amounts can be converted in either direction.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 || math.IsInf(1/rate, 0) {
		return fmt.Errorf("%w: exchange_rate must be a finite positive number", ErrInvalidInput)
	}
	return nil
}
