package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

// BankRepository backs the simulated bank gateway. The same locking rules as
// the wallet ledger apply: mutations happen inside a Tx on a FOR UPDATE row.
type BankRepository interface {
	InsertAccount(account *models.BankAccount, tx Tx) (string, error)
	GetAccountByUserID(userID string) (*models.BankAccount, bool, error)
	LockAccountForUpdate(tx Tx, id string) (*models.BankAccount, bool, error)
	DebitAccount(tx Tx, id string, amount decimal.Decimal) (bool, error)
	CreditAccount(tx Tx, id string, amount decimal.Decimal) error
	InsertTransaction(bt *models.BankTransaction, tx Tx) (string, error)
	UpdateTransactionStatus(id, status string, tx Tx) error
}

type BankRepositoryImpl struct {
	db *sqlx.DB
}

func NewBankRepository(db *sqlx.DB) BankRepository {
	return &BankRepositoryImpl{db: db}
}

func (repo *BankRepositoryImpl) InsertAccount(account *models.BankAccount, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO bank_accounts (user_id, account_number, balance)
		VALUES ($1, $2, $3)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			account.UserID,
			account.AccountNumber,
			account.Balance,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			account.UserID,
			account.AccountNumber,
			account.Balance,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *BankRepositoryImpl) GetAccountByUserID(userID string) (*models.BankAccount, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var account models.BankAccount

	query := `SELECT * FROM bank_accounts WHERE user_id = $1`

	err := repo.db.GetContext(ctx, &account, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &account, err == nil, err
}

func (repo *BankRepositoryImpl) LockAccountForUpdate(tx Tx, id string) (*models.BankAccount, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var account models.BankAccount

	query := `SELECT * FROM bank_accounts WHERE id = $1 FOR UPDATE`

	err := unwrap(tx).GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &account, err == nil, err
}

func (repo *BankRepositoryImpl) DebitAccount(tx Tx, id string, amount decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE bank_accounts SET balance = balance - $1
		WHERE id = $2 AND balance >= $1`

	res, err := unwrap(tx).ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (repo *BankRepositoryImpl) CreditAccount(tx Tx, id string, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE bank_accounts SET balance = balance + $1 WHERE id = $2`

	_, err := unwrap(tx).ExecContext(ctx, query, amount, id)
	return err
}

func (repo *BankRepositoryImpl) InsertTransaction(bt *models.BankTransaction, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO bank_transactions (user_id, amount, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if tx != nil {
		err := unwrap(tx).QueryRowContext(ctx, query,
			bt.UserID,
			bt.Amount,
			bt.Type,
			bt.Status,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			bt.UserID,
			bt.Amount,
			bt.Type,
			bt.Status,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (repo *BankRepositoryImpl) UpdateTransactionStatus(id, status string, tx Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE bank_transactions SET status = $1 WHERE id = $2`

	if tx != nil {
		_, err := unwrap(tx).ExecContext(ctx, query, status, id)
		return err
	}

	_, err := repo.db.ExecContext(ctx, query, status, id)
	return err
}
