package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/storeledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/storeledger/internal/adapter/http/middleware"
	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/auth"
	"github.com/iho/storeledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"Netflix","cost_price":300,"sale_price":450}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !store.reserveCalled || !store.completeCalled {
		t.Fatalf("expected idempotency store to be used, got %+v", store)
	}
}

func TestNewRouter_IdempotentReplayRequiresSameUser(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = stubVerifier{}
		cfg.IdempotencyStore = store
	}))

	createProduct := func(token string) *httptest.ResponseRecorder {
		body := `{"name":"Netflix","cost_price":300,"sale_price":450}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", strings.NewReader(body))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "k1")
		if token != "" {
			req.Header.Set(apimiddleware.TokenHeader, token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := createProduct("admin")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	anonymous := createProduct("")
	if anonymous.Code != http.StatusUnauthorized {
		t.Fatalf("expected replay without token to get 401, got %d: %s", anonymous.Code, anonymous.Body.String())
	}
	if anonymous.Header().Get(apimiddleware.IdempotencyReplayHeader) != "" {
		t.Fatal("unauthenticated request must not be served from the store")
	}

	other := createProduct("operator")
	if other.Code != http.StatusCreated || other.Header().Get(apimiddleware.IdempotencyReplayHeader) != "" {
		t.Fatalf("expected another user to get a fresh response, got %d replay=%q",
			other.Code, other.Header().Get(apimiddleware.IdempotencyReplayHeader))
	}

	again := createProduct("admin")
	if again.Header().Get(apimiddleware.IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected the same user to get the stored response, got %d", again.Code)
	}
	if again.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed body %s, got %s", first.Body.String(), again.Body.String())
	}
}

func TestNewRouter_LoginIsNotIdempotencyCached(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = stubVerifier{}
		cfg.IdempotencyStore = store
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.io","password":"secret1"}`))
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "k1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || rec.Header().Get(apimiddleware.IdempotencyReplayHeader) != "" {
			t.Fatalf("expected a fresh login response, got %d", rec.Code)
		}
	}

	if store.reserveCalled {
		t.Fatalf("expected login to bypass the idempotency store, got keys %v", store.keys)
	}
}

func TestNewRouter_AuthRequired(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.TokenVerifier = stubVerifier{}
	}))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"login is public", http.MethodPost, "/api/v1/auth/login", "", http.StatusOK},
		{"missing token", http.MethodGet, "/api/v1/products/", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/products/", "bogus", http.StatusUnauthorized},
		{"operator token", http.MethodGet, "/api/v1/products/", "operator", http.StatusOK},
		{"operator on users", http.MethodGet, "/api/v1/users/", "operator", http.StatusForbidden},
		{"admin on users", http.MethodGet, "/api/v1/users/", "admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"email":"a@b.io","password":"secret1"}`))
			if tt.token != "" {
				req.Header.Set(apimiddleware.TokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewRouter_RecordsMetricsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = apimiddleware.NewHTTPMetrics(reg)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "http_requests_total" && len(f.GetMetric()) > 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected http_requests_total to be recorded")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/verify",
		"POST /api/v1/auth/reset-password",
		"GET /api/v1/users/",
		"POST /api/v1/users/",
		"PATCH /api/v1/users/{id}",
		"GET /api/v1/products/",
		"POST /api/v1/products/",
		"PUT /api/v1/products/{id}",
		"DELETE /api/v1/products/{id}",
		"GET /api/v1/transactions/",
		"POST /api/v1/transactions/",
		"GET /api/v1/transactions/stats",
		"PUT /api/v1/transactions/{id}/status",
		"GET /api/v1/expenses/",
		"POST /api/v1/expenses/",
		"DELETE /api/v1/expenses/{id}",
		"GET /api/v1/expenses/daily",
		"GET /api/v1/expenses/types",
		"POST /api/v1/expenses/types",
		"DELETE /api/v1/expenses/types/{id}",
		"GET /api/v1/costs/daily",
		"GET /api/v1/clients/",
		"POST /api/v1/clients/profile",
		"GET /api/v1/clients/connections",
		"POST /api/v1/clients/connections",
		"GET /api/v1/exchange-rate",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	healthy := handler.PingFunc(func(ctx context.Context) error { return nil })

	cfg := RouterConfig{
		AuthHandler:         handler.NewAuthHandler(stubUserService{}, stubVerifier{}),
		UserHandler:         handler.NewUserHandler(stubUserService{}),
		ProductHandler:      handler.NewProductHandler(stubProductService{}),
		TransactionHandler:  handler.NewTransactionHandler(stubTransactionService{}, stubStatsService{}, time.UTC),
		ExpenseHandler:      handler.NewExpenseHandler(nil),
		CostHandler:         handler.NewCostHandler(nil),
		ClientHandler:       handler.NewClientHandler(nil),
		ExchangeRateHandler: handler.NewExchangeRateHandler(nil, 95.5),
		HealthHandler:       handler.NewHealthHandler(healthy, nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*auth.Claims, error) {
	switch token {
	case "admin":
		return &auth.Claims{UserID: "u-admin", IsAdmin: true}, nil
	case "operator":
		return &auth.Claims{UserID: "u-op"}, nil
	default:
		return nil, domain.ErrInvalidToken
	}
}

type stubUserService struct{}

func (stubUserService) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	return &usecase.LoginResult{Token: "tok", User: &domain.User{ID: "u1", Email: email}}, nil
}

func (stubUserService) ResetPassword(ctx context.Context, email, newPassword string) error {
	return nil
}

func (stubUserService) CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error) {
	return &domain.User{ID: "u1"}, nil
}

func (stubUserService) UpdateUser(ctx context.Context, input usecase.UpdateUserInput) (*domain.User, error) {
	return &domain.User{ID: input.ID}, nil
}

func (stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return []*domain.User{}, nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input usecase.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p1"}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, id string, input usecase.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, id string) error {
	return nil
}

func (stubProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return []*domain.Product{}, nil
}

type stubTransactionService struct{}

func (stubTransactionService) CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "t1"}, nil
}

func (stubTransactionService) UpdateStatus(ctx context.Context, id, status string) error {
	return nil
}

func (stubTransactionService) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	return []*domain.Transaction{}, nil
}

type stubStatsService struct{}

func (stubStatsService) ComputeStats(ctx context.Context, q usecase.StatsQuery) (*analytics.Report, error) {
	return &analytics.Report{}, nil
}

type stubIdempotencyStore struct {
	reserveCalled  bool
	completeCalled bool
	responses      map[string]usecase.IdempotentResponse
	keys           []string
}

func (s *stubIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (*usecase.IdempotentResponse, error) {
	s.reserveCalled = true
	s.keys = append(s.keys, key)
	if resp, ok := s.responses[key]; ok {
		return &resp, nil
	}
	return nil, nil
}

func (s *stubIdempotencyStore) Complete(ctx context.Context, key string, resp usecase.IdempotentResponse, ttl time.Duration) error {
	s.completeCalled = true
	if s.responses == nil {
		s.responses = map[string]usecase.IdempotentResponse{}
	}
	s.responses[key] = resp
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
