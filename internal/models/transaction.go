package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeTransfer = "transfer"
	TransactionTypeBill     = "bill"
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
	TransactionTypeRefund   = "refund"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is one signed entry in the append-only ledger. Negative amounts
// are debits, positive amounts are credits. Rows are never updated or deleted.
type Transaction struct {
	ID          string          `db:"id"`
	WalletID    string          `db:"wallet_id"`
	Type        string          `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
	Status      string          `db:"status"`
	Description sql.NullString  `db:"description"`

	// Reference carries the id of the originating transfer, bill payment or
	// bank transaction. The two entries of a wallet-to-wallet transfer share
	// the same reference.
	Reference string    `db:"reference"`
	CreatedAt time.Time `db:"created_at"`
}
