package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all business Prometheus metrics
type Metrics struct {
	// Statistics metrics
	StatsComputed *prometheus.CounterVec
	StatsDuration prometheus.Histogram
	StatsErrors   prometheus.Counter

	// Sales metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionAmount   prometheus.Histogram
	StatusChanges       *prometheus.CounterVec

	// Catalog and cost metrics
	ProductsCreated prometheus.Counter
	ExpensesCreated *prometheus.CounterVec

	// Exchange rate metrics
	RateFetches *prometheus.CounterVec
	RateValue   prometheus.Gauge

	// Authentication metrics
	LoginAttempts *prometheus.CounterVec

	// Database metrics
	DBRetries prometheus.Counter
}

// New creates and registers all metrics with the default registerer
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics with reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Statistics metrics
		StatsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_stats_computed_total",
				Help: "Total number of statistics reports computed by date filter",
			},
			[]string{"filter"},
		),
		StatsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeledger_stats_duration_seconds",
			Help:    "Duration of statistics report computation including store reads",
			Buckets: prometheus.DefBuckets,
		}),
		StatsErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_stats_errors_total",
			Help: "Total number of failed statistics computations",
		}),

		// Sales metrics
		TransactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_transactions_created_total",
				Help: "Total number of transactions recorded by status",
			},
			[]string{"status"},
		),
		TransactionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeledger_transaction_amount",
			Help:    "Recorded transaction amounts in their own currency",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
		StatusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_transaction_status_changes_total",
				Help: "Total number of transaction status changes by new status",
			},
			[]string{"status"},
		),

		// Catalog and cost metrics
		ProductsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_products_created_total",
			Help: "Total number of products created",
		}),
		ExpensesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_expenses_created_total",
				Help: "Total number of expenses created by distribution type",
			},
			[]string{"distribution"},
		),

		// Exchange rate metrics
		RateFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_exchange_rate_fetch_total",
				Help: "Exchange rate fetch attempts by source and result",
			},
			[]string{"source", "result"},
		),
		RateValue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storeledger_exchange_rate",
			Help: "Last fetched exchange rate",
		}),

		// Authentication metrics
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storeledger_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),

		// Database metrics
		DBRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "storeledger_db_retries_total",
			Help: "Total number of retried database operations",
		}),
	}
}
