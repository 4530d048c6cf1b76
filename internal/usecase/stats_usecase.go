package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// StatsConfig holds the reporting settings of StatsUseCase.
type StatsConfig struct {
	BaseCurrency domain.Currency
	FallbackRate float64
	Location     *time.Location
}

// StatsUseCase builds the dashboard statistics report.
type StatsUseCase struct {
	repo    StatsRepository
	rates   RateSource
	cfg     StatsConfig
	now     Clock
	metrics *metrics.Metrics
}

// NewStatsUseCase creates a new StatsUseCase. rates may be nil, in which
// case requests without an explicit rate use the fallback rate.
func NewStatsUseCase(repo StatsRepository, rates RateSource, cfg StatsConfig, m *metrics.Metrics) *StatsUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = domain.CurrencyRUB
	}
	return &StatsUseCase{
		repo:    repo,
		rates:   rates,
		cfg:     cfg,
		now:     time.Now,
		metrics: m,
	}
}

// WithClock overrides the time source, used by tests.
func (uc *StatsUseCase) WithClock(now Clock) *StatsUseCase {
	uc.now = now
	return uc
}

// StatsQuery selects the reporting window and currency.
type StatsQuery struct {
	DateFilter string
	StartDate  string
	EndDate    string
	// Currency is the reporting currency, base currency when empty.
	Currency string
	// ExchangeRate is base currency units per foreign unit. Fetched when nil.
	ExchangeRate *float64
}

// ComputeStats resolves the window, loads the snapshots it needs and
// aggregates them into a report.
func (uc *StatsUseCase) ComputeStats(ctx context.Context, q StatsQuery) (*analytics.Report, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	report, err := uc.compute(ctx, q)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.StatsErrors.Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.StatsComputed.WithLabelValues(string(report.Filter)).Inc()
		uc.metrics.StatsDuration.Observe(time.Since(start).Seconds())
	}
	logger.Debug().
		Str("filter", string(report.Filter)).
		Int("days", len(report.Daily)).
		Int("transactions", report.TransactionsCount).
		Msg("stats computed")

	return report, nil
}

func (uc *StatsUseCase) compute(ctx context.Context, q StatsQuery) (*analytics.Report, error) {
	filter, err := analytics.ParseFilter(q.DateFilter)
	if err != nil {
		return nil, err
	}

	target, err := domain.ParseCurrency(q.Currency, uc.cfg.BaseCurrency)
	if err != nil {
		return nil, err
	}

	rate, err := uc.resolveRate(ctx, q.ExchangeRate)
	if err != nil {
		return nil, err
	}

	var bounds analytics.Bounds
	if filter == analytics.FilterAll {
		bounds, err = uc.repo.CompletedDateBounds(ctx)
		if err != nil {
			return nil, fmt.Errorf("load transaction date bounds: %w", err)
		}
		bounds.Min = bounds.Min.In(uc.cfg.Location)
		bounds.Max = bounds.Max.In(uc.cfg.Location)
	}

	window, err := analytics.ResolveWindow(filter, q.StartDate, q.EndDate, uc.now().In(uc.cfg.Location), bounds)
	if err != nil {
		return nil, err
	}

	in := analytics.Input{
		Filter:       filter,
		Window:       window,
		Conversion:   uc.converter(target, rate),
		ExchangeRate: rate,
		Location:     uc.cfg.Location,
	}

	if window.Days() > 0 {
		from, to := window.TimeRange(uc.cfg.Location)
		in.Transactions, err = uc.repo.ListCompletedTransactions(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("load completed transactions: %w", err)
		}

		in.Expenses, err = uc.repo.ListActiveExpenses(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("load active expenses: %w", err)
		}
	}

	in.StatusCounts, err = uc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count transactions by status: %w", err)
	}

	return analytics.Compute(in), nil
}

// converter maps the base-per-foreign rate onto a multiplier for amounts
// not already in the target currency.
func (uc *StatsUseCase) converter(target domain.Currency, rate float64) analytics.Converter {
	if target == uc.cfg.BaseCurrency {
		return analytics.Converter{Target: target, Rate: rate}
	}
	return analytics.Converter{Target: target, Rate: 1 / rate}
}

func (uc *StatsUseCase) resolveRate(ctx context.Context, explicit *float64) (float64, error) {
	if explicit != nil {
		if err := domain.ValidateRate(*explicit); err != nil {
			return 0, err
		}
		return *explicit, nil
	}

	return resolveRate(ctx, uc.rates, uc.cfg.FallbackRate), nil
}

// resolveRate asks the rate source for the current rate and falls back to
// the configured rate when it is unavailable.
func resolveRate(ctx context.Context, rates RateSource, fallback float64) float64 {
	if rates == nil {
		return fallback
	}

	current, err := rates.Current(ctx)
	if err == nil && current != nil {
		err = domain.ValidateRate(current.Rate)
	}
	if err != nil || current == nil {
		zerolog.Ctx(ctx).Warn().Err(err).Float64("fallback_rate", fallback).Msg("using fallback exchange rate")
		return fallback
	}

	return current.Rate
}
