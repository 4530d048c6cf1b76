// Package analytics turns transaction and expense snapshots into the
// dashboard statistics report: window resolution, expense amortization,
// revenue aggregation and the gap-filled daily series.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/iho/storeledger/internal/domain"
)

// DateFilter selects the reporting window.
type DateFilter string

const (
	FilterToday  DateFilter = "today"
	FilterWeek   DateFilter = "week"
	FilterMonth  DateFilter = "month"
	FilterCustom DateFilter = "custom"
	FilterAll    DateFilter = "all"
)

const secondsPerDay = 24 * 60 * 60

// ParseFilter validates a date_filter value. An empty value means all-time.
func ParseFilter(value string) (DateFilter, error) {
	f := DateFilter(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case "":
		return FilterAll, nil
	case FilterToday, FilterWeek, FilterMonth, FilterCustom, FilterAll:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown date_filter %q", domain.ErrInvalidInput, value)
}

// Window is an inclusive range of calendar days, each held as UTC midnight.
// A window whose End precedes its Start is empty.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from two instants, keeping their calendar dates.
func NewWindow(start, end time.Time) Window {
	return Window{Start: domain.TruncateDay(start), End: domain.TruncateDay(end)}
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return daysBetween(w.Start, w.End) + 1
}

// Contains reports whether the calendar day d lies in the window.
func (w Window) Contains(d time.Time) bool {
	d = domain.TruncateDay(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Date returns the i-th day of the window.
func (w Window) Date(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// index returns the offset of day d from the window start.
func (w Window) index(d time.Time) int {
	return daysBetween(w.Start, d)
}

// TimeRange converts the window into a half-open [from, to) instant range
// in loc, suitable for filtering timestamps.
func (w Window) TimeRange(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return from, to
}

// Bounds holds the earliest and latest completed transaction dates.
type Bounds struct {
	Min   time.Time
	Max   time.Time
	Found bool
}

// ResolveWindow maps a filter onto concrete window bounds. now is the
// current instant in the reporting location; bounds is only consulted for
// FilterAll. Custom bounds are taken verbatim, so an end before the start
// produces an empty window rather than an error.
func ResolveWindow(filter DateFilter, start, end string, now time.Time, bounds Bounds) (Window, error) {
	today := domain.TruncateDay(now)

	switch filter {
	case FilterToday:
		return Window{Start: today, End: today}, nil
	case FilterWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return Window{Start: today.AddDate(0, 0, -offset), End: today}, nil
	case FilterMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: first, End: today}, nil
	case FilterCustom:
		if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
			return Window{}, fmt.Errorf("%w: custom filter requires start_date and end_date", domain.ErrInvalidInput)
		}
		s, err := domain.ParseDate(start)
		if err != nil {
			return Window{}, err
		}
		e, err := domain.ParseDate(end)
		if err != nil {
			return Window{}, err
		}
		return Window{Start: s, End: e}, nil
	case FilterAll:
		if !bounds.Found {
			return Window{Start: today, End: today}, nil
		}
		return NewWindow(bounds.Min, bounds.Max), nil
	}

	return Window{}, fmt.Errorf("%w: unknown date_filter %q", domain.ErrInvalidInput, filter)
}

// daysBetween counts calendar days from one UTC midnight to another.
// time.Duration saturates after about 292 years, so seconds are used.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}
