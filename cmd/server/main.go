package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/storeledger/internal/adapter/http"
	"github.com/iho/storeledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/storeledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/storeledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/storeledger/internal/adapter/repository/redis"
	"github.com/iho/storeledger/internal/infrastructure/auth"
	"github.com/iho/storeledger/internal/infrastructure/config"
	"github.com/iho/storeledger/internal/infrastructure/exchangerate"
	"github.com/iho/storeledger/internal/infrastructure/logger"
	"github.com/iho/storeledger/internal/infrastructure/metrics"
	"github.com/iho/storeledger/internal/infrastructure/postgres"
	"github.com/iho/storeledger/internal/infrastructure/redis"
	"github.com/iho/storeledger/internal/usecase"
)

// limiterIdleTTL is how long an idle client keeps its rate limiter.
const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.LoadWithDotEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(reg)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	productRepo := postgresRepo.NewProductRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	statsRepo := postgresRepo.NewStatsRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	retrier := postgresRepo.NewRetrier(m)
	idGen := postgresRepo.NewULIDGenerator()

	rates := exchangerate.NewProvider(exchangerate.Config{
		CBRURL:      cfg.ExchangeRateCBRURL,
		FallbackURL: cfg.ExchangeRateAPIURL,
		Timeout:     cfg.ExchangeRateTimeout,
		MaxRetries:  cfg.ExchangeRateRetries,
	}, m)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	base := cfg.Base()
	loc := cfg.Location()

	// Use cases
	userUC := usecase.NewUserUseCase(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), jwtManager, idGen, m)
	productUC := usecase.NewProductUseCase(productRepo, idGen, base, m)
	transactionUC := usecase.NewTransactionUseCase(transactionRepo, productRepo, retrier, idGen, m)
	statsUC := usecase.NewStatsUseCase(statsRepo, rates, usecase.StatsConfig{
		BaseCurrency: base,
		FallbackRate: cfg.ExchangeRateFallback,
		Location:     loc,
	}, m)
	expenseUC := usecase.NewExpenseUseCase(expenseRepo, rates, idGen, base, cfg.ExchangeRateFallback, m)
	costUC := usecase.NewCostUseCase(transactionRepo, expenseRepo, rates, base, cfg.ExchangeRateFallback, loc)
	clientUC := usecase.NewClientUseCase(txManager, clientRepo, retrier, idGen)

	limiter := apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	routerCfg := httpAdapter.RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userUC, jwtManager),
		UserHandler:         handler.NewUserHandler(userUC),
		ProductHandler:      handler.NewProductHandler(productUC),
		TransactionHandler:  handler.NewTransactionHandler(transactionUC, statsUC, loc),
		ExpenseHandler:      handler.NewExpenseHandler(expenseUC),
		CostHandler:         handler.NewCostHandler(costUC),
		ClientHandler:       handler.NewClientHandler(clientUC),
		ExchangeRateHandler: handler.NewExchangeRateHandler(rates, cfg.ExchangeRateFallback),
		HealthHandler:       handler.NewHealthHandler(pool, redisPinger(redisClient)),
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         limiter,
		Metrics:             apimiddleware.NewHTTPMetrics(reg),
		Logger:              &log,
		CORSOrigins:         cfg.CORSAllowedOrigins,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = jwtManager
	} else {
		log.Warn().Msg("authentication disabled")
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	apiServer := newHTTPServer(cfg, cfg.HTTPPort, httpAdapter.NewRouter(routerCfg))
	metricsServer := newHTTPServer(cfg, cfg.MetricsPort, metricsHandler(reg))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		return serve(apiServer)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.MetricsPort).Msg("starting metrics server")
		return serve(metricsServer)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				limiter.CleanupLimiters(limiterIdleTTL)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func newHTTPServer(cfg *config.Config, port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return nil
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// redisPinger returns nil when Redis is not configured so readiness
// reports it as disabled.
func redisPinger(client *goredis.Client) handler.Pinger {
	if client == nil {
		return nil
	}
	return handler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
