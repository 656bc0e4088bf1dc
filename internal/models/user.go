package models

import (
	"database/sql"
	"time"
)

const (
	// UserStatusActive is the default status after registration. Active users
	// can log in, move money and access every account feature.
	UserStatusActive = "active"

	// UserStatusSuspended blocks logins and transactions until an admin
	// reinstates the account.
	UserStatusSuspended = "suspended"

	// UserStatusBanned is terminal. Banned accounts are never reinstated.
	UserStatusBanned = "banned"
)

const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
)

const (
	KycLevelBasic    = "basic"
	KycLevelVerified = "verified"
	KycLevelPremium  = "premium"
)

type User struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	PhoneNumber    string         `db:"phone_number"`
	HashedPassword string         `db:"hashed_password"`
	KycLevel       string         `db:"kyc_level"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	ProfilePicture sql.NullString `db:"profile_picture"`
	LastLoginAt    sql.NullTime   `db:"last_login_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
