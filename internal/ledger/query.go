package ledger

import (
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

// CreateWallet opens an additional wallet for the user in the given currency.
// The unique index on (user, currency) makes a second wallet in the same
// currency fail cleanly no matter how requests race.
func (l *Ledger) CreateWallet(userID, currency string) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:       userID,
		Currency:     currency,
		DailyLimit:   decimal.NewFromInt(5000),
		MonthlyLimit: decimal.NewFromInt(20000),
	}

	id, err := l.db.Wallet().Insert(wallet, nil)
	if err != nil {
		return nil, err
	}

	created, found, err := l.db.Wallet().GetOne(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}

	return created, nil
}

// Wallets lists the user's wallets, oldest first.
func (l *Ledger) Wallets(userID string) ([]models.Wallet, error) {
	wallets, _, err := l.db.Wallet().GetAllByUserID(userID)
	return wallets, err
}

// Wallet returns one wallet, enforcing ownership.
func (l *Ledger) Wallet(userID, walletID string) (*models.Wallet, error) {
	wallet, found, err := l.db.Wallet().GetOne(walletID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}
	if wallet.UserID != userID {
		return nil, ErrForbidden
	}
	return wallet, nil
}

// Balance reads the current balance of an owned wallet.
func (l *Ledger) Balance(userID, walletID string) (decimal.Decimal, string, error) {
	wallet, err := l.Wallet(userID, walletID)
	if err != nil {
		return decimal.Zero, "", err
	}
	return wallet.Balance, wallet.Currency, nil
}

// History pages through a wallet's ledger entries, newest first. It returns
// the page plus the total entry count so callers can compute page counts.
func (l *Ledger) History(userID, walletID string, page, pageSize int) ([]models.Transaction, int, error) {
	if _, err := l.Wallet(userID, walletID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return l.db.Transaction().ListByWallet(walletID, page, pageSize)
}

// GetTransaction returns one ledger entry when it belongs to a wallet the
// user owns.
func (l *Ledger) GetTransaction(userID, transactionID string) (*models.Transaction, error) {
	t, found, err := l.db.Transaction().GetOne(transactionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTransactionNotFound
	}

	if _, err := l.Wallet(userID, t.WalletID); err != nil {
		return nil, err
	}

	return t, nil
}

// Transfers lists the transfers touching a wallet the user owns, in either
// direction, newest first.
func (l *Ledger) Transfers(userID, walletID string) ([]models.Transfer, error) {
	if _, err := l.Wallet(userID, walletID); err != nil {
		return nil, err
	}
	return l.db.Transfer().ListByWallet(walletID)
}
