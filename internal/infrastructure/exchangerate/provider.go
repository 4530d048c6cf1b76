package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

// Default upstream endpoints, tried in order.
const (
	DefaultCBRURL      = "https://www.cbr-xml-daily.ru/daily_json.js"
	DefaultFallbackURL = "https://api.exchangerate-api.com/v4/latest/USD"
)

// maxBodySize bounds upstream responses.
const maxBodySize = 1 << 20

// Source is one upstream that quotes the foreign currency in base units.
type Source struct {
	Name    string
	URL     string
	Extract func(body []byte) (float64, error)
}

// Config configures the Provider.
type Config struct {
	CBRURL      string
	FallbackURL string
	// Timeout bounds a single upstream request.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts per source.
	MaxRetries uint64
	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client
}

// Provider fetches the current USD/RUB rate, trying each source in turn.
type Provider struct {
	client     *http.Client
	sources    []Source
	timeout    time.Duration
	maxRetries uint64
	now        func() time.Time
	metrics    *metrics.Metrics
}

// NewProvider creates a Provider for the central bank feed with the
// exchangerate-api feed as fallback.
func NewProvider(cfg Config, m *metrics.Metrics) *Provider {
	if cfg.CBRURL == "" {
		cfg.CBRURL = DefaultCBRURL
	}
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = DefaultFallbackURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Provider{
		client: client,
		sources: []Source{
			{Name: "cbr", URL: cfg.CBRURL, Extract: extractCBR},
			{Name: "exchangerate-api", URL: cfg.FallbackURL, Extract: extractExchangeRateAPI},
		},
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		now:        time.Now,
		metrics:    m,
	}
}

// Current returns the rate from the first source that answers.
// It returns domain.ErrRateUnavailable when every source fails.
func (p *Provider) Current(ctx context.Context) (*domain.ExchangeRate, error) {
	logger := zerolog.Ctx(ctx)

	var errs []error
	for _, src := range p.sources {
		rate, err := p.fetch(ctx, src)
		if err != nil {
			p.record(src.Name, "error")
			logger.Warn().Err(err).Str("source", src.Name).Msg("exchange rate source failed")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}

		p.record(src.Name, "success")
		if p.metrics != nil {
			p.metrics.RateValue.Set(rate)
		}

		return &domain.ExchangeRate{
			Rate:   rate,
			Date:   domain.TruncateDay(p.now()),
			Source: src.Name,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrRateUnavailable, errors.Join(errs...))
}

func (p *Provider) fetch(ctx context.Context, src Source) (float64, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries),
		ctx,
	)

	var rate float64
	err := backoff.Retry(func() error {
		body, err := p.get(ctx, src.URL)
		if err != nil {
			return err
		}

		value, err := src.Extract(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := domain.ValidateRate(value); err != nil {
			return backoff.Permanent(fmt.Errorf("rate %v: %w", value, err))
		}

		rate = value
		return nil
	}, b)

	return rate, err
}

func (p *Provider) get(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func (p *Provider) record(source, result string) {
	if p.metrics != nil {
		p.metrics.RateFetches.WithLabelValues(source, result).Inc()
	}
}

func extractCBR(body []byte) (float64, error) {
	var payload struct {
		Valute map[string]struct {
			Nominal float64 `json:"Nominal"`
			Value   float64 `json:"Value"`
		} `json:"Valute"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode cbr response: %w", err)
	}

	usd, ok := payload.Valute["USD"]
	if !ok {
		return 0, errors.New("cbr response has no USD quote")
	}
	if usd.Nominal > 1 {
		return usd.Value / usd.Nominal, nil
	}
	return usd.Value, nil
}

func extractExchangeRateAPI(body []byte) (float64, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode exchangerate-api response: %w", err)
	}

	rub, ok := payload.Rates["RUB"]
	if !ok {
		return 0, errors.New("exchangerate-api response has no RUB rate")
	}
	return rub, nil
}
