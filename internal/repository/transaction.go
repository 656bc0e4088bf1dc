package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

// TransactionRepository writes and reads the append-only ledger. There is
// deliberately no update or delete.
type TransactionRepository interface {
	Insert(t *models.Transaction, tx Tx) (string, error)
	GetOne(id string) (*models.Transaction, bool, error)
	ListByWallet(walletID string, page, pageSize int) ([]models.Transaction, int, error)
}

type TransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (repo *TransactionRepositoryImpl) Insert(t *models.Transaction, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO transactions (wallet_id, type, amount, currency, status, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			t.WalletID,
			t.Type,
			t.Amount,
			t.Currency,
			t.Status,
			t.Description,
			t.Reference,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			t.WalletID,
			t.Type,
			t.Amount,
			t.Currency,
			t.Status,
			t.Description,
			t.Reference,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *TransactionRepositoryImpl) GetOne(id string) (*models.Transaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var t models.Transaction

	query := `SELECT * FROM transactions WHERE id = $1`

	err := repo.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &t, err == nil, err
}

// ListByWallet returns one page of the wallet's history, newest first, plus
// the total row count so callers can shape pagination metadata.
func (repo *TransactionRepositoryImpl) ListByWallet(walletID string, page, pageSize int) ([]models.Transaction, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	countQuery := `SELECT count(*) FROM transactions WHERE wallet_id = $1`
	if err := repo.db.GetContext(ctx, &total, countQuery, walletID); err != nil {
		return nil, 0, err
	}

	var transactions []models.Transaction

	query := `
		SELECT * FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	err := repo.db.SelectContext(ctx, &transactions, query, walletID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}
