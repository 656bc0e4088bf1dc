package models

import (
	"time"
)

const (
	OtpPurposeLogin    = "login"
	OtpPurposeTransfer = "transfer"
)

// OtpValidity is how long a code stays usable after issuance.
const OtpValidity = 5 * time.Minute

type OtpCode struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Code      string    `db:"code"`
	Purpose   string    `db:"purpose"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}
