package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	WalletStatusActive = "active"
	WalletStatusOnHold = "on-hold"
)

// DefaultCurrency is the currency of the wallet auto-provisioned at
// registration.
const DefaultCurrency = "EGP"

type Wallet struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	Currency  string          `db:"currency"`
	Status    string          `db:"status"`
	DailyLimit decimal.Decimal `db:"daily_limit"`

	// MonthlyLimit is stored but not yet enforced anywhere. The enforcement
	// rules (calendar month vs rolling 30 days, which transaction types count)
	// are still undecided.
	MonthlyLimit decimal.Decimal `db:"monthly_limit"`

	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
	DeletedAt sql.NullTime `db:"deleted_at"`
}
