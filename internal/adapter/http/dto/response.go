package dto

import (
	"time"

	"github.com/iho/storeledger/internal/analytics"
	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/usecase"
)

// DateLayout is the calendar date format used in responses.
const DateLayout = "2006-01-02"

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// UserInfo is the user summary embedded in login responses.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// LoginFromResult converts a login result to response.
func LoginFromResult(r *usecase.LoginResult) *LoginResponse {
	return &LoginResponse{
		Token: r.Token,
		User: UserInfo{
			ID:       r.User.ID,
			Email:    r.User.Email,
			FullName: r.User.FullName,
			IsAdmin:  r.User.IsAdmin,
		},
	}
}

// VerifyTokenResponse reports whether a token is valid.
type VerifyTokenResponse struct {
	Valid bool      `json:"valid"`
	User  *UserInfo `json:"user,omitempty"`
	Error string    `json:"error,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	IsAdmin   bool       `json:"is_admin"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = &UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  u.FullName,
			IsAdmin:   u.IsAdmin,
			IsActive:  u.IsActive,
			LastLogin: u.LastLogin,
			CreatedAt: u.CreatedAt,
		}
	}
	return result
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CostPrice     float64   `json:"cost_price"`
	SalePrice     float64   `json:"sale_price"`
	Currency      string    `json:"currency"`
	Margin        float64   `json:"margin"`
	MarginPercent float64   `json:"margin_percent"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductsFromDomain converts domain products to responses.
func ProductsFromDomain(products []*domain.Product) []*ProductResponse {
	result := make([]*ProductResponse, len(products))
	for i, p := range products {
		result[i] = &ProductResponse{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			CostPrice:     p.CostPrice.InexactFloat64(),
			SalePrice:     p.SalePrice.InexactFloat64(),
			Currency:      string(p.Currency),
			Margin:        p.Margin().InexactFloat64(),
			MarginPercent: p.MarginPercent().InexactFloat64(),
			IsActive:      p.IsActive,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return result
}

// CreateProductResponse acknowledges a new product.
type CreateProductResponse struct {
	Success   bool   `json:"success"`
	ProductID string `json:"product_id"`
}

// TransactionResponse represents a sale in API responses.
type TransactionResponse struct {
	ID              string    `json:"id"`
	TransactionCode string    `json:"transaction_code"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ClientTelegram  string    `json:"client_telegram"`
	ClientName      string    `json:"client_name"`
	Amount          float64   `json:"amount"`
	CostPrice       float64   `json:"cost_price"`
	Profit          float64   `json:"profit"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	TransactionDate time.Time `json:"transaction_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		TransactionCode: t.Code,
		ProductID:       t.ProductID,
		ProductName:     t.ProductName,
		ClientTelegram:  t.ClientTelegram,
		ClientName:      t.ClientName,
		Amount:          t.Amount.InexactFloat64(),
		CostPrice:       t.CostPrice.InexactFloat64(),
		Profit:          t.Profit.InexactFloat64(),
		Currency:        string(t.Currency),
		Status:          string(t.Status),
		Notes:           t.Notes,
		TransactionDate: t.OccurredAt,
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// CreateTransactionResponse acknowledges a recorded sale.
type CreateTransactionResponse struct {
	Success         bool   `json:"success"`
	TransactionID   string `json:"transaction_id"`
	TransactionCode string `json:"transaction_code"`
}

// ProductAnalytics is one row of the per-product breakdown.
type ProductAnalytics struct {
	Name         string  `json:"name"`
	SalesCount   int     `json:"sales_count"`
	TotalProfit  float64 `json:"total_profit"`
	TotalRevenue float64 `json:"total_revenue"`
}

// DailyAnalytics is one day of the statistics report.
type DailyAnalytics struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	Expenses  float64 `json:"expenses"`
	NetProfit float64 `json:"net_profit"`
}

// WindowResponse is the resolved reporting window.
type WindowResponse struct {
	Filter    string `json:"date_filter"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// StatsResponse is the dashboard statistics document.
type StatsResponse struct {
	TotalTransactions int     `json:"total_transactions"`
	TransactionsCount int     `json:"transactions_count"`
	ExpensesCount     int     `json:"expenses_count"`
	TotalRevenue      float64 `json:"total_revenue"`
	TransactionCosts  float64 `json:"transaction_costs"`
	ExpenseCosts      float64 `json:"expense_costs"`
	TotalCosts        float64 `json:"total_costs"`
	TotalProfit       float64 `json:"total_profit"`
	CompletedCount    int     `json:"completed_count"`
	PendingCount      int     `json:"pending_count"`
	FailedCount       int     `json:"failed_count"`

	ProductAnalytics []ProductAnalytics `json:"product_analytics"`
	DailyAnalytics   []DailyAnalytics   `json:"daily_analytics"`

	Window       WindowResponse `json:"window"`
	Currency     string         `json:"currency"`
	ExchangeRate float64        `json:"exchange_rate"`
}

// StatsFromReport converts a report to response.
func StatsFromReport(r *analytics.Report) *StatsResponse {
	resp := &StatsResponse{
		TotalTransactions: r.TotalTransactions,
		TransactionsCount: r.TransactionsCount,
		ExpensesCount:     r.ExpensesCount,
		TotalRevenue:      r.TotalRevenue,
		TransactionCosts:  r.TransactionCosts,
		ExpenseCosts:      r.ExpenseCosts,
		TotalCosts:        r.TotalCosts,
		TotalProfit:       r.TotalProfit,
		CompletedCount:    r.StatusCounts.Completed,
		PendingCount:      r.StatusCounts.Pending,
		FailedCount:       r.StatusCounts.Failed,
		ProductAnalytics:  make([]ProductAnalytics, len(r.Products)),
		DailyAnalytics:    make([]DailyAnalytics, len(r.Daily)),
		Window: WindowResponse{
			Filter:    string(r.Filter),
			StartDate: r.Window.Start.Format(DateLayout),
			EndDate:   r.Window.End.Format(DateLayout),
		},
		Currency:     string(r.Currency),
		ExchangeRate: r.ExchangeRate,
	}

	for i, p := range r.Products {
		resp.ProductAnalytics[i] = ProductAnalytics{
			Name:         p.Name,
			SalesCount:   p.SalesCount,
			TotalProfit:  p.TotalProfit,
			TotalRevenue: p.TotalRevenue,
		}
	}

	for i, d := range r.Daily {
		resp.DailyAnalytics[i] = DailyAnalytics{
			Date:      d.Date.Format(DateLayout),
			Count:     d.Count,
			Revenue:   d.Revenue,
			Profit:    d.Profit,
			Expenses:  d.Expenses,
			NetProfit: d.NetProfit,
		}
	}

	return resp
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID               string    `json:"id"`
	ExpenseTypeID    string    `json:"expense_type_id"`
	ExpenseTypeName  string    `json:"expense_type_name"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Description      string    `json:"description"`
	StartDate        string    `json:"start_date"`
	EndDate          *string   `json:"end_date"`
	DistributionType string    `json:"distribution_type"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:               e.ID,
		ExpenseTypeID:    e.ExpenseTypeID,
		ExpenseTypeName:  e.ExpenseTypeName,
		Amount:           e.Amount.InexactFloat64(),
		Currency:         string(e.Currency),
		Description:      e.Description,
		StartDate:        e.StartDate.Format(DateLayout),
		DistributionType: string(e.Distribution),
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt,
	}
	if e.EndDate != nil {
		end := e.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// ExpenseTypeResponse represents an expense category.
type ExpenseTypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseTypesFromDomain converts domain expense types to responses.
func ExpenseTypesFromDomain(types []*domain.ExpenseType) []*ExpenseTypeResponse {
	result := make([]*ExpenseTypeResponse, len(types))
	for i, t := range types {
		result[i] = &ExpenseTypeResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		}
	}
	return result
}

// DailyExpenseResponse is the amortized expense total of one day.
type DailyExpenseResponse struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// DailyExpensesFromUseCase converts amortized days to responses.
func DailyExpensesFromUseCase(days []usecase.DailyExpense) []DailyExpenseResponse {
	result := make([]DailyExpenseResponse, len(days))
	for i, d := range days {
		result[i] = DailyExpenseResponse{Date: d.Date.Format(DateLayout), Total: d.Total}
	}
	return result
}

// TransactionCostResponse is one sale of the cost breakdown.
type TransactionCostResponse struct {
	ID              string  `json:"id"`
	TransactionCode string  `json:"transaction_code"`
	ProductName     string  `json:"product_name"`
	ClientName      string  `json:"client_name"`
	Amount          float64 `json:"amount"`
	CostPrice       float64 `json:"cost_price"`
	Currency        string  `json:"currency"`
}

// ExpenseShareResponse is the part of one expense attributed to the day.
type ExpenseShareResponse struct {
	ID               string  `json:"id"`
	ExpenseTypeName  string  `json:"expense_type_name"`
	Description      string  `json:"description"`
	Amount           float64 `json:"amount"`
	DailyAmount      float64 `json:"daily_amount"`
	DistributionType string  `json:"distribution_type"`
	Currency         string  `json:"currency"`
}

// CostBreakdownResponse lists the costs of one day.
type CostBreakdownResponse struct {
	Date                  string                    `json:"date"`
	ExchangeRate          float64                   `json:"exchange_rate"`
	TransactionCosts      []TransactionCostResponse `json:"transaction_costs"`
	Expenses              []ExpenseShareResponse    `json:"expenses"`
	TotalTransactionCosts float64                   `json:"total_transaction_costs"`
	TotalExpenses         float64                   `json:"total_expenses"`
	TotalCosts            float64                   `json:"total_costs"`
}

// CostBreakdownFromUseCase converts a breakdown to response.
func CostBreakdownFromUseCase(b *usecase.CostBreakdown) *CostBreakdownResponse {
	resp := &CostBreakdownResponse{
		Date:                  b.Date.Format(DateLayout),
		ExchangeRate:          b.ExchangeRate,
		TransactionCosts:      make([]TransactionCostResponse, len(b.TransactionCosts)),
		Expenses:              make([]ExpenseShareResponse, len(b.Expenses)),
		TotalTransactionCosts: b.TotalTransactionCosts,
		TotalExpenses:         b.TotalExpenses,
		TotalCosts:            b.TotalCosts,
	}

	for i, c := range b.TransactionCosts {
		resp.TransactionCosts[i] = TransactionCostResponse{
			ID:              c.ID,
			TransactionCode: c.Code,
			ProductName:     c.ProductName,
			ClientName:      c.ClientName,
			Amount:          c.Amount,
			CostPrice:       c.CostPrice,
			Currency:        string(c.Currency),
		}
	}

	for i, s := range b.Expenses {
		resp.Expenses[i] = ExpenseShareResponse{
			ID:               s.Expense.ID,
			ExpenseTypeName:  s.Expense.ExpenseTypeName,
			Description:      s.Expense.Description,
			Amount:           s.Expense.Amount.InexactFloat64(),
			DailyAmount:      s.Amount,
			DistributionType: string(s.Expense.Distribution),
			Currency:         string(s.Expense.Currency),
		}
	}

	return resp
}

// ClientResponse represents per-client purchase analytics.
type ClientResponse struct {
	ID             string    `json:"id,omitempty"`
	ClientTelegram string    `json:"client_telegram"`
	ClientName     string    `json:"client_name"`
	TotalRevenue   float64   `json:"total_revenue"`
	PurchaseCount  int       `json:"purchase_count"`
	AvgCheck       float64   `json:"avg_check"`
	FirstPurchase  time.Time `json:"first_purchase"`
	LastPurchase   time.Time `json:"last_purchase"`
	Importance     string    `json:"importance"`
	Comments       string    `json:"comments"`
}

// ClientsFromDomain converts client summaries to responses.
func ClientsFromDomain(summaries []*domain.ClientSummary) []*ClientResponse {
	result := make([]*ClientResponse, len(summaries))
	for i, s := range summaries {
		result[i] = &ClientResponse{
			ID:             s.ID,
			ClientTelegram: s.ClientTelegram,
			ClientName:     s.ClientName,
			TotalRevenue:   s.TotalRevenue.InexactFloat64(),
			PurchaseCount:  s.PurchaseCount,
			AvgCheck:       s.AvgCheck.InexactFloat64(),
			FirstPurchase:  s.FirstPurchase,
			LastPurchase:   s.LastPurchase,
			Importance:     string(s.Importance),
			Comments:       s.Comments,
		}
	}
	return result
}

// ConnectionResponse represents a link between two clients.
type ConnectionResponse struct {
	ID                 string    `json:"id"`
	ClientIDFrom       string    `json:"client_id_from"`
	ClientIDTo         string    `json:"client_id_to"`
	ClientTelegramFrom string    `json:"client_telegram_from"`
	ClientTelegramTo   string    `json:"client_telegram_to"`
	ConnectionType     string    `json:"connection_type"`
	Description        string    `json:"description"`
	CreatedAt          time.Time `json:"created_at"`
}

// ConnectionsFromDomain converts client connections to responses.
func ConnectionsFromDomain(conns []*domain.ClientConnection) []*ConnectionResponse {
	result := make([]*ConnectionResponse, len(conns))
	for i, c := range conns {
		result[i] = &ConnectionResponse{
			ID:                 c.ID,
			ClientIDFrom:       c.ClientIDFrom,
			ClientIDTo:         c.ClientIDTo,
			ClientTelegramFrom: c.ClientTelegramFrom,
			ClientTelegramTo:   c.ClientTelegramTo,
			ConnectionType:     c.ConnectionType,
			Description:        c.Description,
			CreatedAt:          c.CreatedAt,
		}
	}
	return result
}

// ExchangeRateResponse represents the current exchange rate.
type ExchangeRateResponse struct {
	Rate   float64 `json:"rate"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
}

// ExchangeRateFromDomain converts a domain exchange rate to response.
func ExchangeRateFromDomain(r *domain.ExchangeRate) *ExchangeRateResponse {
	return &ExchangeRateResponse{
		Rate:   r.Rate,
		Date:   r.Date.Format(DateLayout),
		Source: r.Source,
	}
}

// RateUnavailableResponse is returned when every rate source failed.
type RateUnavailableResponse struct {
	Error        string  `json:"error"`
	FallbackRate float64 `json:"fallback_rate"`
}
