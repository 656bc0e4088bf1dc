package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Biller struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

type BillPayment struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	WalletID  string          `db:"wallet_id"`
	BillerID  string          `db:"biller_id"`
	Amount    decimal.Decimal `db:"amount"`
	Currency  string          `db:"currency"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`

	// BillerName is filled by joined reads only.
	BillerName string `db:"biller_name"`
}
