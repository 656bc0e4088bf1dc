package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type OtpRepository interface {
	Insert(otp *models.OtpCode) (string, error)

	// InvalidateUnused burns every outstanding unused code of the given
	// purpose so that only the most recently issued one can authorize
	// anything.
	InvalidateUnused(userID, purpose string) error

	// Consume marks a matching, unused, unexpired code as used and reports
	// whether such a code existed. Verification and consumption are one
	// conditional UPDATE, so a code can never authorize two operations.
	Consume(userID, code, purpose string) (bool, error)
}

type OtpRepositoryImpl struct {
	db *sqlx.DB
}

func NewOtpRepository(db *sqlx.DB) OtpRepository {
	return &OtpRepositoryImpl{db: db}
}

func (repo *OtpRepositoryImpl) Insert(otp *models.OtpCode) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO otp_codes (user_id, code, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		otp.UserID,
		otp.Code,
		otp.Purpose,
		otp.ExpiresAt,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *OtpRepositoryImpl) InvalidateUnused(userID, purpose string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE otp_codes SET used = true
		WHERE user_id = $1 AND purpose = $2 AND used = false`

	_, err := repo.db.ExecContext(ctx, query, userID, purpose)
	return err
}

func (repo *OtpRepositoryImpl) Consume(userID, code, purpose string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE otp_codes SET used = true
		WHERE user_id = $1 AND code = $2 AND purpose = $3
		  AND used = false AND expires_at > now()`

	res, err := repo.db.ExecContext(ctx, query, userID, code, purpose)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
