package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProductMargin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cost, sale  string
		wantMargin  string
		wantPercent string
	}{
		{name: "regular margin", cost: "300", sale: "450", wantMargin: "150", wantPercent: "50"},
		{name: "fractional percent", cost: "300", sale: "400", wantMargin: "100", wantPercent: "33.33"},
		{name: "zero cost", cost: "0", sale: "100", wantMargin: "100", wantPercent: "0"},
		{name: "loss", cost: "200", sale: "150", wantMargin: "-50", wantPercent: "-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{
				CostPrice: decimal.RequireFromString(tt.cost),
				SalePrice: decimal.RequireFromString(tt.sale),
			}

			if !p.Margin().Equal(decimal.RequireFromString(tt.wantMargin)) {
				t.Fatalf("expected margin %s, got %s", tt.wantMargin, p.Margin())
			}
			if !p.MarginPercent().Equal(decimal.RequireFromString(tt.wantPercent)) {
				t.Fatalf("expected margin percent %s, got %s", tt.wantPercent, p.MarginPercent())
			}
		})
	}
}

func TestTransactionStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []TransactionStatus{TransactionStatusCompleted, TransactionStatusPending, TransactionStatusFailed} {
		if !s.IsValid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}

	if TransactionStatus("refunded").IsValid() {
		t.Fatal("expected unknown status to be invalid")
	}

	tx := &Transaction{Status: TransactionStatusPending}
	if tx.IsCompleted() {
		t.Fatal("pending transaction must not count as completed")
	}
}

func TestNewTransactionCode(t *testing.T) {
	t.Parallel()

	code := NewTransactionCode(time.Date(2024, 9, 18, 14, 5, 9, 0, time.UTC))
	if code != "TX-20240918140509" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	c, err := ParseCurrency(" usd ", CurrencyRUB)
	if err != nil || c != CurrencyUSD {
		t.Fatalf("expected USD, got %s err=%v", c, err)
	}

	c, err = ParseCurrency("", CurrencyRUB)
	if err != nil || c != CurrencyRUB {
		t.Fatalf("expected default RUB, got %s err=%v", c, err)
	}

	if _, err := ParseCurrency("EUR", CurrencyRUB); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserCanManageUsers(t *testing.T) {
	t.Parallel()

	var nilUser *User
	if nilUser.CanManageUsers() {
		t.Fatal("nil user must not manage users")
	}

	if (&User{IsAdmin: true, IsActive: false}).CanManageUsers() {
		t.Fatal("disabled admin must not manage users")
	}

	if !(&User{IsAdmin: true, IsActive: true}).CanManageUsers() {
		t.Fatal("active admin should manage users")
	}
}

func TestEnumsValidity(t *testing.T) {
	t.Parallel()

	if !DistributionOneTime.IsValid() || !DistributionRecurring.IsValid() || DistributionType("weekly").IsValid() {
		t.Fatal("unexpected distribution validity")
	}

	if !ImportanceHigh.IsValid() || Importance("vip").IsValid() {
		t.Fatal("unexpected importance validity")
	}
}
