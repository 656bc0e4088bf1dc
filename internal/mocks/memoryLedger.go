package mocks

import (
	"time"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
)

type memoryTransactionRepo struct {
	db *MemoryDatabase
}

func (r *memoryTransactionRepo) Insert(t *models.Transaction, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *t
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.transactions = append(r.db.transactions, stored)

	return id, nil
}

func (r *memoryTransactionRepo) GetOne(id string) (*models.Transaction, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, t := range r.db.transactions {
		if t.ID == id {
			found := t
			return &found, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryTransactionRepo) ListByWallet(walletID string, page, pageSize int) ([]models.Transaction, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	// Insertion order stands in for created_at; newest first means walking
	// the slice backwards.
	var matched []models.Transaction
	for i := len(r.db.transactions) - 1; i >= 0; i-- {
		if r.db.transactions[i].WalletID == walletID {
			matched = append(matched, r.db.transactions[i])
		}
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Transaction{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

type memoryTransferRepo struct {
	db *MemoryDatabase
}

func (r *memoryTransferRepo) Insert(transfer *models.Transfer, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *transfer
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.transfers = append(r.db.transfers, stored)

	return id, nil
}

func (r *memoryTransferRepo) ListByWallet(walletID string) ([]models.Transfer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []models.Transfer
	for i := len(r.db.transfers) - 1; i >= 0; i-- {
		t := r.db.transfers[i]
		if t.SenderWalletID == walletID || t.ReceiverWalletID == walletID {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
