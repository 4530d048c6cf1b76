package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
)

const cbrBody = `{"Date":"2026-10-15T11:30:00+03:00","Valute":{"USD":{"CharCode":"USD","Nominal":1,"Value":81.25},"EUR":{"CharCode":"EUR","Nominal":1,"Value":94.1}}}`

const apiBody = `{"base":"USD","rates":{"EUR":0.86,"RUB":82.4}}`

func serve(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestProvider(cbrURL, fallbackURL string, m *metrics.Metrics) *Provider {
	p := NewProvider(Config{CBRURL: cbrURL, FallbackURL: fallbackURL, Timeout: time.Second}, m)
	p.now = func() time.Time { return time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC) }
	return p
}

func TestProvider_Current_CBR(t *testing.T) {
	cbr, _ := serve(t, http.StatusOK, cbrBody)
	api, apiHits := serve(t, http.StatusOK, apiBody)

	rate, err := newTestProvider(cbr.URL, api.URL, nil).Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 81.25, rate.Rate)
	assert.Equal(t, "cbr", rate.Source)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), rate.Date)
	assert.Zero(t, atomic.LoadInt32(apiHits))
}

func TestProvider_Current_FallsBackToSecondSource(t *testing.T) {
	cbr, _ := serve(t, http.StatusBadGateway, "upstream down")
	api, _ := serve(t, http.StatusOK, apiBody)

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)

	rate, err := newTestProvider(cbr.URL, api.URL, m).Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 82.4, rate.Rate)
	assert.Equal(t, "exchangerate-api", rate.Source)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetches.WithLabelValues("cbr", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateFetches.WithLabelValues("exchangerate-api", "success")))
	assert.Equal(t, 82.4, testutil.ToFloat64(m.RateValue))
}

func TestProvider_Current_MalformedPayload(t *testing.T) {
	cbr, _ := serve(t, http.StatusOK, `{"Valute":{}}`)
	api, _ := serve(t, http.StatusOK, `not json`)

	_, err := newTestProvider(cbr.URL, api.URL, nil).Current(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestProvider_Current_ClientErrorIsNotRetried(t *testing.T) {
	cbr, cbrHits := serve(t, http.StatusNotFound, "")
	api, _ := serve(t, http.StatusOK, apiBody)

	p := newTestProvider(cbr.URL, api.URL, nil)
	p.maxRetries = 3

	_, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(cbrHits))
}

func TestExtractCBR_Nominal(t *testing.T) {
	rate, err := extractCBR([]byte(`{"Valute":{"USD":{"Nominal":10,"Value":812.5}}}`))
	require.NoError(t, err)
	assert.InDelta(t, 81.25, rate, 1e-9)
}

func TestExtractExchangeRateAPI_MissingRUB(t *testing.T) {
	_, err := extractExchangeRateAPI([]byte(`{"rates":{"EUR":0.9}}`))
	assert.Error(t, err)
}
