package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
)

type TransferRepository interface {
	Insert(transfer *models.Transfer, tx Tx) (string, error)
	ListByWallet(walletID string) ([]models.Transfer, error)
}

type TransferRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransferRepository(db *sqlx.DB) TransferRepository {
	return &TransferRepositoryImpl{db: db}
}

func (repo *TransferRepositoryImpl) Insert(transfer *models.Transfer, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO transfers (sender_wallet_id, receiver_wallet_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			transfer.SenderWalletID,
			transfer.ReceiverWalletID,
			transfer.Amount,
			transfer.Currency,
			transfer.Status,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			transfer.SenderWalletID,
			transfer.ReceiverWalletID,
			transfer.Amount,
			transfer.Currency,
			transfer.Status,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *TransferRepositoryImpl) ListByWallet(walletID string) ([]models.Transfer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transfers []models.Transfer

	query := `
		SELECT * FROM transfers
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &transfers, query, walletID)
	return transfers, err
}
