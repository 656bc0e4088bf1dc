package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is the in-process stand-in for a real bank-network account.
// Every user gets one at registration, pre-seeded with play money so that
// deposits have something to draw from.
type BankAccount struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	AccountNumber string          `db:"account_number"`
	Balance       decimal.Decimal `db:"balance"`
	CreatedAt     time.Time       `db:"created_at"`
}

const (
	BankTransactionTypeDeposit  = "deposit"
	BankTransactionTypeWithdraw = "withdraw"
)

type BankTransaction struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Type      string          `db:"type"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}
