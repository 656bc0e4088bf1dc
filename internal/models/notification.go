package models

import (
	"time"
)

const (
	NotificationTypeTransaction = "transaction"
	NotificationTypeSecurity    = "security"
	NotificationTypeSystem      = "system"
)

type Notification struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Type      string    `db:"type"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}
