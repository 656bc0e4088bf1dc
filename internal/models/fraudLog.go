package models

import (
	"database/sql"
	"time"
)

const (
	FraudTypeSuspiciousTransfer = "suspicious_transfer"
	FraudTypeTooManyAttempts    = "too_many_attempts"
	FraudTypeLoginWarning       = "login_warning"
	FraudTypeUnusualAmount      = "unusual_amount"
)

type FraudLog struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Type      string         `db:"type"`
	Details   sql.NullString `db:"details"`
	CreatedAt time.Time      `db:"created_at"`
}
