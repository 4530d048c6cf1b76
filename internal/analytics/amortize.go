package analytics

import (
	"time"

	"github.com/iho/storeledger/internal/domain"
)

// Converter brings amounts into the reporting currency. Amounts stored in
// any other currency are multiplied by Rate.
type Converter struct {
	Target domain.Currency
	Rate   float64
}

// Convert returns amount expressed in the target currency.
func (c Converter) Convert(amount float64, from domain.Currency) float64 {
	if from == "" || from == c.Target {
		return amount
	}
	return amount * c.Rate
}

// Span returns the effective inclusive date range of an expense and its
// length in days. A non-positive span is reported as zero days.
func Span(e *domain.Expense) (time.Time, time.Time, int) {
	start := domain.TruncateDay(e.StartDate)

	if e.Distribution == domain.DistributionOneTime {
		return start, start, 1
	}

	if e.EndDate == nil {
		return start, start.AddDate(0, 0, domain.OpenEndedSpanDays-1), domain.OpenEndedSpanDays
	}

	end := domain.TruncateDay(*e.EndDate)
	days := daysBetween(start, end) + 1
	if days <= 0 {
		return start, end, 0
	}
	return start, end, days
}

// Intersects reports whether an active expense contributes to any day of w.
func Intersects(e *domain.Expense, w Window) bool {
	if !e.IsActive() || w.Days() == 0 {
		return false
	}
	start, end, days := Span(e)
	if days == 0 {
		return false
	}
	return !start.After(w.End) && !end.Before(w.Start)
}

// DailyShare returns the converted amount an expense attributes to day d.
func DailyShare(e *domain.Expense, d time.Time, conv Converter) float64 {
	single := NewWindow(d, d)
	if !Intersects(e, single) {
		return 0
	}
	_, _, days := Span(e)
	return conv.Convert(e.Amount.InexactFloat64(), e.Currency) / float64(days)
}

// Amortize distributes expenses over the window. The result holds one
// unrounded amount per window day, zero where nothing contributes.
func Amortize(w Window, expenses []*domain.Expense, conv Converter) []float64 {
	out := make([]float64, w.Days())
	if len(out) == 0 {
		return out
	}

	for _, e := range expenses {
		if !Intersects(e, w) {
			continue
		}

		start, end, days := Span(e)
		amount := conv.Convert(e.Amount.InexactFloat64(), e.Currency)

		if e.Distribution == domain.DistributionOneTime {
			out[w.index(start)] += amount
			continue
		}

		share := amount / float64(days)
		from := w.index(maxTime(start, w.Start))
		to := w.index(minTime(end, w.End))
		for i := from; i <= to; i++ {
			out[i] += share
		}
	}

	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
