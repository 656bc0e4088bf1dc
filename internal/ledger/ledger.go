// Package ledger is the money-movement core. Every balance mutation in the
// system goes through it: wallet-to-wallet transfers, bill payments, the
// simulated bank gateway and money-request settlement. Each operation couples
// its guards, its dual-entry mutation and its record inserts into one
// database transaction, so a failure on any step leaves no partial state.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/otp"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/omarsabra/mahfaza/internal/stream"
)

var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrWalletOnHold          = errors.New("wallet cannot process transactions at this time")
	ErrReceiverNotFound      = errors.New("receiver not found")
	ErrForbidden             = errors.New("access denied")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrLimitExceeded         = errors.New("amount exceeds the wallet's daily limit")
	ErrSameWallet            = errors.New("cannot transfer to the same wallet")
	ErrCurrencyMismatch      = errors.New("wallet currency does not match")
	ErrBillerNotFound        = errors.New("biller not found")
	ErrBillerInactive        = errors.New("biller is not accepting payments")
	ErrBankAccountNotFound   = errors.New("bank account not found")
	ErrInsufficientBankFunds = errors.New("insufficient bank balance")
	ErrRequestNotFound       = errors.New("money request not found")
	ErrRequestAlreadyHandled = errors.New("money request has already been processed")
	ErrSelfRequest           = errors.New("cannot request money from yourself")
	ErrTransactionNotFound   = errors.New("transaction not found")

	// ErrConflict surfaces when the database aborts the transaction because
	// of concurrent mutation. Safe to retry with a fresh OTP.
	ErrConflict = errors.New("the operation conflicted with a concurrent one, please retry")

	// ErrInvalidOtp is the OTP engine's failure, re-exported so callers of
	// the ledger deal with one error namespace.
	ErrInvalidOtp = otp.ErrInvalidOtp

	// ErrDuplicateWallet mirrors the repository's unique-pair violation.
	ErrDuplicateWallet = repository.ErrDuplicateWallet
)

// NotificationTopic carries post-commit notification events to the worker.
const NotificationTopic = "wallet.notifications"

// NotificationEvent is the fire-and-forget payload emitted after a completed
// movement. Losing one never rolls back money.
type NotificationEvent struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Type    string `json:"type"`
}

type Ledger struct {
	db        repository.Database
	otp       *otp.Engine
	stream    *stream.KafkaStream
	logger    *slog.Logger
	bankDelay time.Duration
}

func New(db repository.Database, otpEngine *otp.Engine, kafka *stream.KafkaStream, logger *slog.Logger, bankDelay time.Duration) *Ledger {
	return &Ledger{
		db:        db,
		otp:       otpEngine,
		stream:    kafka,
		logger:    logger,
		bankDelay: bankDelay,
	}
}

// notify publishes a notification event. Errors are logged and swallowed:
// delivery is best-effort by contract.
func (l *Ledger) notify(event *NotificationEvent) {
	if l.stream == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("notification event marshal failed", "error", err)
		return
	}

	if err := l.stream.ProduceMessage(NotificationTopic, string(payload)); err != nil {
		l.logger.Error("notification event publish failed", "error", err, "user_id", event.UserID)
	}
}

// logFraud records a suspicious attempt without ever failing the caller.
func (l *Ledger) logFraud(userID, fraudType, details string) {
	_, err := l.db.FraudLog().Insert(&models.FraudLog{
		UserID:  userID,
		Type:    fraudType,
		Details: nullString(details),
	})
	if err != nil {
		l.logger.Error("fraud log insert failed", "error", err, "user_id", userID)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isSerializationFailure reports whether Postgres aborted the transaction
// because it could not serialize concurrent work (40001) or chose this
// session as a deadlock victim (40P01).
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
