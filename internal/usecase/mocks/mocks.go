package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product

	CreateFunc     func(ctx context.Context, product *domain.Product) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Product, error)
	UpdateFunc     func(ctx context.Context, product *domain.Product) error
	DeactivateFunc func(ctx context.Context, id string, at time.Time) error
	ListActiveFunc func(ctx context.Context) ([]*domain.Product, error)
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.IsActive = false
	p.UpdatedAt = at
	return nil
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var products []*domain.Product
	for _, p := range m.products {
		if p.IsActive {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu  sync.RWMutex
	txs map[string]*domain.Transaction

	CreateFunc          func(ctx context.Context, tx *domain.Transaction) error
	UpdateStatusFunc    func(ctx context.Context, id string, status domain.TransactionStatus) error
	ListRecentFunc      func(ctx context.Context, limit int) ([]*domain.Transaction, error)
	ListCompletedOnFunc func(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txs: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tx.ID] = tx
	return nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	tx.Status = status
	return nil
}

func (m *MockTransactionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*domain.Transaction
	for _, tx := range m.txs {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].OccurredAt.After(txs[j].OccurredAt) })
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (m *MockTransactionRepository) ListCompletedOn(ctx context.Context, from, to time.Time) ([]*domain.Transaction, error) {
	if m.ListCompletedOnFunc != nil {
		return m.ListCompletedOnFunc(ctx, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txs []*domain.Transaction
	for _, tx := range m.txs {
		if tx.IsCompleted() && !tx.OccurredAt.Before(from) && tx.OccurredAt.Before(to) {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].OccurredAt.Before(txs[j].OccurredAt) })
	return txs, nil
}

// Get returns a stored transaction.
func (m *MockTransactionRepository) Get(id string) (*domain.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.txs[id]
	return tx, ok
}

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu          sync.RWMutex
	clients     map[string]*domain.Client
	connections []*domain.ClientConnection

	ListSummariesFunc          func(ctx context.Context) ([]*domain.ClientSummary, error)
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Client, error)
	UpdateFunc                 func(ctx context.Context, client *domain.Client) error
	UpsertFromTransactionsFunc func(ctx context.Context, client *domain.Client) error
	EnsureTxFunc               func(ctx context.Context, tx usecase.DBTx, id, telegram string) (string, error)
	CreateConnectionTxFunc     func(ctx context.Context, tx usecase.DBTx, conn *domain.ClientConnection) error
	ListConnectionsFunc        func(ctx context.Context) ([]*domain.ClientConnection, error)
}

func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

func (m *MockClientRepository) ListSummaries(ctx context.Context) ([]*domain.ClientSummary, error) {
	if m.ListSummariesFunc != nil {
		return m.ListSummariesFunc(ctx)
	}
	return nil, nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrClientNotFound
}

func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, client)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) UpsertFromTransactions(ctx context.Context, client *domain.Client) error {
	if m.UpsertFromTransactionsFunc != nil {
		return m.UpsertFromTransactionsFunc(ctx, client)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.ClientTelegram == client.ClientTelegram {
			c.Importance = client.Importance
			c.Comments = client.Comments
			c.UpdatedAt = client.UpdatedAt
			return nil
		}
	}
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) EnsureTx(ctx context.Context, tx usecase.DBTx, id, telegram string) (string, error) {
	if m.EnsureTxFunc != nil {
		return m.EnsureTxFunc(ctx, tx, id, telegram)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.ClientTelegram == telegram {
			return c.ID, nil
		}
	}
	m.clients[id] = &domain.Client{ID: id, ClientTelegram: telegram, Importance: domain.ImportanceMedium}
	return id, nil
}

func (m *MockClientRepository) CreateConnectionTx(ctx context.Context, tx usecase.DBTx, conn *domain.ClientConnection) error {
	if m.CreateConnectionTxFunc != nil {
		return m.CreateConnectionTxFunc(ctx, tx, conn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections = append(m.connections, conn)
	return nil
}

func (m *MockClientRepository) ListConnections(ctx context.Context) ([]*domain.ClientConnection, error) {
	if m.ListConnectionsFunc != nil {
		return m.ListConnectionsFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.ClientConnection(nil), m.connections...), nil
}

// Clients returns the number of stored profiles.
func (m *MockClientRepository) Clients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.DBTx, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.DBTx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of DBTx.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier runs the operation once.
type MockRetrier struct {
	Calls int
}

func (m *MockRetrier) Retry(_ context.Context, operation func() error) error {
	m.Calls++
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}
