package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type BillingRepository interface {
	GetActiveBillers() ([]models.Biller, error)
	GetBiller(id string) (*models.Biller, bool, error)
	InsertPayment(p *models.BillPayment, tx Tx) (string, error)
	ListPaymentsByUser(userID string) ([]models.BillPayment, error)
}

type BillingRepositoryImpl struct {
	db *sqlx.DB
}

func NewBillingRepository(db *sqlx.DB) BillingRepository {
	return &BillingRepositoryImpl{db: db}
}

func (repo *BillingRepositoryImpl) GetActiveBillers() ([]models.Biller, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var billers []models.Biller

	query := `SELECT * FROM billers WHERE active = true ORDER BY name ASC`

	err := repo.db.SelectContext(ctx, &billers, query)
	return billers, err
}

func (repo *BillingRepositoryImpl) GetBiller(id string) (*models.Biller, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var biller models.Biller

	query := `SELECT * FROM billers WHERE id = $1`

	err := repo.db.GetContext(ctx, &biller, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &biller, err == nil, err
}

func (repo *BillingRepositoryImpl) InsertPayment(p *models.BillPayment, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO bill_payments (user_id, wallet_id, biller_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			p.UserID,
			p.WalletID,
			p.BillerID,
			p.Amount,
			p.Currency,
			p.Status,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			p.UserID,
			p.WalletID,
			p.BillerID,
			p.Amount,
			p.Currency,
			p.Status,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *BillingRepositoryImpl) ListPaymentsByUser(userID string) ([]models.BillPayment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var payments []models.BillPayment

	query := `
		SELECT bp.*, b.name AS biller_name
		FROM bill_payments bp
		JOIN billers b ON b.id = bp.biller_id
		WHERE bp.user_id = $1
		ORDER BY bp.created_at DESC`

	err := repo.db.SelectContext(ctx, &payments, query, userID)
	return payments, err
}
