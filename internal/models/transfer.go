package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer records one completed wallet-to-wallet movement. It is written
// once, inside the same database transaction as its two ledger entries, and
// never mutated afterwards.
type Transfer struct {
	ID               string          `db:"id"`
	SenderWalletID   string          `db:"sender_wallet_id"`
	ReceiverWalletID string          `db:"receiver_wallet_id"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	Status           string          `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
}
