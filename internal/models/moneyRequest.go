package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MoneyRequestStatusPending  = "pending"
	MoneyRequestStatusAccepted = "accepted"
	MoneyRequestStatusRejected = "rejected"
)

// MoneyRequest asks another user to send money. Accepting one runs the same
// dual-entry transfer as a direct send, with the request's recipient acting
// as the paying side.
type MoneyRequest struct {
	ID         string          `db:"id"`
	FromUserID string          `db:"from_user_id"`
	ToUserID   string          `db:"to_user_id"`
	Amount     decimal.Decimal `db:"amount"`
	Currency   string          `db:"currency"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  sql.NullTime    `db:"updated_at"`
}
