package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/storeledger/internal/adapter/http/handler"
	"github.com/iho/storeledger/internal/adapter/http/middleware"
	"github.com/iho/storeledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ProductHandler      *handler.ProductHandler
	TransactionHandler  *handler.TransactionHandler
	ExpenseHandler      *handler.ExpenseHandler
	CostHandler         *handler.CostHandler
	ClientHandler       *handler.ClientHandler
	ExchangeRateHandler *handler.ExchangeRateHandler
	HealthHandler       *handler.HealthHandler

	// TokenVerifier guards /api/v1. Authentication is skipped when nil.
	TokenVerifier middleware.TokenVerifier

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *middleware.HTTPMetrics
	Logger           *zerolog.Logger
	CORSOrigins      []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type",
				middleware.TokenHeader, middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/verify", cfg.AuthHandler.Verify)
			r.Post("/reset-password", cfg.AuthHandler.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			if cfg.TokenVerifier != nil {
				r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			}
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Route("/users", func(r chi.Router) {
				if cfg.TokenVerifier != nil {
					r.Use(middleware.RequireAdmin)
				}
				r.Get("/", cfg.UserHandler.List)
				r.Post("/", cfg.UserHandler.Create)
				r.Patch("/{id}", cfg.UserHandler.Update)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.ProductHandler.List)
				r.Post("/", cfg.ProductHandler.Create)
				r.Put("/{id}", cfg.ProductHandler.Update)
				r.Delete("/{id}", cfg.ProductHandler.Delete)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.TransactionHandler.List)
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/stats", cfg.TransactionHandler.Stats)
				r.Put("/{id}/status", cfg.TransactionHandler.UpdateStatus)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", cfg.ExpenseHandler.List)
				r.Post("/", cfg.ExpenseHandler.Create)
				r.Get("/daily", cfg.ExpenseHandler.Daily)
				r.Get("/types", cfg.ExpenseHandler.ListTypes)
				r.Post("/types", cfg.ExpenseHandler.CreateType)
				r.Delete("/types/{id}", cfg.ExpenseHandler.DeleteType)
				r.Delete("/{id}", cfg.ExpenseHandler.Delete)
			})

			r.Get("/costs/daily", cfg.CostHandler.Daily)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", cfg.ClientHandler.List)
				r.Post("/profile", cfg.ClientHandler.UpdateProfile)
				r.Get("/connections", cfg.ClientHandler.ListConnections)
				r.Post("/connections", cfg.ClientHandler.AddConnection)
			})

			r.Get("/exchange-rate", cfg.ExchangeRateHandler.Current)
		})
	})

	return r
}
