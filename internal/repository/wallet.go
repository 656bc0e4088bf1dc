package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

// ErrDuplicateWallet is returned when inserting a second wallet for the same
// (user, currency) pair. The unique index is the source of truth; no
// check-then-insert race exists.
var ErrDuplicateWallet = errors.New("wallet already exists for this user and currency")

type WalletRepository interface {
	Insert(wallet *models.Wallet, tx Tx) (string, error)
	GetOne(id string) (*models.Wallet, bool, error)
	GetAllByUserID(userID string) ([]models.Wallet, bool, error)
	GetByUserAndCurrency(userID, currency string) (*models.Wallet, bool, error)
	GetAll() ([]models.Wallet, error)

	// LockForUpdate reads a wallet row under FOR UPDATE inside tx. The row
	// stays locked until the transaction ends, which is what serializes
	// concurrent mutations of the same wallet.
	LockForUpdate(tx Tx, id string) (*models.Wallet, bool, error)

	// Debit subtracts amount inside tx. It returns false without touching the
	// row when the balance is short, so balance >= 0 holds no matter how the
	// caller interleaves.
	Debit(tx Tx, id string, amount decimal.Decimal) (bool, error)
	Credit(tx Tx, id string, amount decimal.Decimal) error
}

type WalletRepositoryImpl struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (repo *WalletRepositoryImpl) Insert(wallet *models.Wallet, tx Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO wallets (user_id, currency, daily_limit, monthly_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var err error
	if tx != nil {
		err = unwrap(tx).QueryRowContext(ctx, query,
			wallet.UserID,
			wallet.Currency,
			wallet.DailyLimit,
			wallet.MonthlyLimit,
		).Scan(&id)
	} else {
		err = repo.db.GetContext(ctx, &id, query,
			wallet.UserID,
			wallet.Currency,
			wallet.DailyLimit,
			wallet.MonthlyLimit,
		)
	}

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return "", ErrDuplicateWallet
		}
		return "", err
	}

	return id, nil
}

func (repo *WalletRepositoryImpl) GetOne(id string) (*models.Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallet models.Wallet

	query := `SELECT * FROM wallets WHERE id = $1 AND deleted_at IS NULL`

	err := repo.db.GetContext(ctx, &wallet, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &wallet, err == nil, err
}

func (repo *WalletRepositoryImpl) GetAllByUserID(userID string) ([]models.Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallets []models.Wallet

	query := `
		SELECT * FROM wallets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &wallets, query, userID)
	if err != nil {
		return nil, false, err
	}

	return wallets, len(wallets) > 0, nil
}

func (repo *WalletRepositoryImpl) GetByUserAndCurrency(userID, currency string) (*models.Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallet models.Wallet

	query := `
		SELECT * FROM wallets
		WHERE user_id = $1 AND currency = $2 AND deleted_at IS NULL`

	err := repo.db.GetContext(ctx, &wallet, query, userID, currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &wallet, err == nil, err
}

func (repo *WalletRepositoryImpl) GetAll() ([]models.Wallet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallets []models.Wallet

	query := `SELECT * FROM wallets WHERE deleted_at IS NULL ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &wallets, query)
	return wallets, err
}

func (repo *WalletRepositoryImpl) LockForUpdate(tx Tx, id string) (*models.Wallet, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var wallet models.Wallet

	query := `SELECT * FROM wallets WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	err := unwrap(tx).GetContext(ctx, &wallet, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &wallet, err == nil, err
}

func (repo *WalletRepositoryImpl) Debit(tx Tx, id string, amount decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE wallets SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND balance >= $1 AND deleted_at IS NULL`

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

func (repo *WalletRepositoryImpl) Credit(tx Tx, id string, amount decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE wallets SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`

	_, err := unwrap(tx).ExecContext(ctx, query, amount, id)
	return err
}
