package mocks

import (
	"sort"
	"time"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/shopspring/decimal"
)

type memoryWalletRepo struct {
	db *MemoryDatabase
}

func (r *memoryWalletRepo) Insert(wallet *models.Wallet, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.wallets {
		if existing.UserID == wallet.UserID && existing.Currency == wallet.Currency && !existing.DeletedAt.Valid {
			return "", repository.ErrDuplicateWallet
		}
	}

	id := r.db.nextID()
	stored := *wallet
	stored.ID = id
	stored.CreatedAt = time.Now()
	if stored.Status == "" {
		stored.Status = models.WalletStatusActive
	}
	r.db.wallets[id] = stored

	return id, nil
}

func (r *memoryWalletRepo) GetOne(id string) (*models.Wallet, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	wallet, ok := r.db.wallets[id]
	if !ok || wallet.DeletedAt.Valid {
		return nil, false, nil
	}
	return &wallet, true, nil
}

func (r *memoryWalletRepo) GetAllByUserID(userID string) ([]models.Wallet, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var wallets []models.Wallet
	for _, wallet := range r.db.wallets {
		if wallet.UserID == userID && !wallet.DeletedAt.Valid {
			wallets = append(wallets, wallet)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets, len(wallets) > 0, nil
}

func (r *memoryWalletRepo) GetByUserAndCurrency(userID, currency string) (*models.Wallet, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, wallet := range r.db.wallets {
		if wallet.UserID == userID && wallet.Currency == currency && !wallet.DeletedAt.Valid {
			w := wallet
			return &w, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryWalletRepo) GetAll() ([]models.Wallet, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	wallets := make([]models.Wallet, 0, len(r.db.wallets))
	for _, wallet := range r.db.wallets {
		if !wallet.DeletedAt.Valid {
			wallets = append(wallets, wallet)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID > wallets[j].ID })
	return wallets, nil
}

func (r *memoryWalletRepo) LockForUpdate(tx repository.Tx, id string) (*models.Wallet, bool, error) {
	return r.GetOne(id)
}

func (r *memoryWalletRepo) Debit(tx repository.Tx, id string, amount decimal.Decimal) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	wallet, ok := r.db.wallets[id]
	if !ok || wallet.DeletedAt.Valid || wallet.Balance.LessThan(amount) {
		return false, nil
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	r.db.wallets[id] = wallet
	return true, nil
}

func (r *memoryWalletRepo) Credit(tx repository.Tx, id string, amount decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	wallet, ok := r.db.wallets[id]
	if !ok || wallet.DeletedAt.Valid {
		return nil
	}

	wallet.Balance = wallet.Balance.Add(amount)
	r.db.wallets[id] = wallet
	return nil
}
