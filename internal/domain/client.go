package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Importance ranks how valuable a client relationship is.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// IsValid checks if the importance is known.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	}
	return false
}

// Client is the stored profile of a buyer identified by telegram handle.
type Client struct {
	ID             string
	ClientTelegram string
	ClientName     string
	Importance     Importance
	Comments       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClientSummary aggregates completed purchases of one client.
type ClientSummary struct {
	ID             string
	ClientTelegram string
	ClientName     string
	TotalRevenue   decimal.Decimal
	PurchaseCount  int
	AvgCheck       decimal.Decimal
	FirstPurchase  time.Time
	LastPurchase   time.Time
	Importance     Importance
	Comments       string
}

// ClientConnection links two clients, e.g. one referring the other.
type ClientConnection struct {
	ID                 string
	ClientIDFrom       string
	ClientIDTo         string
	ClientTelegramFrom string
	ClientTelegramTo   string
	ConnectionType     string
	Description        string
	CreatedAt          time.Time
}
