// Package mocks provides test doubles. MemoryDatabase is a stateful
// in-memory implementation of repository.Database whose BeginTx holds a
// mutex until Commit or Rollback, which gives tests the same
// one-writer-at-a-time behavior the real database enforces with row locks.
package mocks

import (
	"context"
	"strconv"
	"sync"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
)

type MemoryDatabase struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users         map[string]models.User
	wallets       map[string]models.Wallet
	otps          map[string]models.OtpCode
	transactions  []models.Transaction
	transfers     []models.Transfer
	notifications map[string]models.Notification
	billers       map[string]models.Biller
	billPayments  []models.BillPayment
	bankAccounts  map[string]models.BankAccount
	bankTxs       map[string]models.BankTransaction
	moneyRequests map[string]models.MoneyRequest
	fraudLogs     []models.FraudLog

	seq int
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		users:         make(map[string]models.User),
		wallets:       make(map[string]models.Wallet),
		otps:          make(map[string]models.OtpCode),
		notifications: make(map[string]models.Notification),
		billers:       make(map[string]models.Biller),
		bankAccounts:  make(map[string]models.BankAccount),
		bankTxs:       make(map[string]models.BankTransaction),
		moneyRequests: make(map[string]models.MoneyRequest),
	}
}

// nextID must be called with mu held.
func (d *MemoryDatabase) nextID() string {
	d.seq++
	return strconv.Itoa(d.seq)
}

type snapshot struct {
	wallets       map[string]models.Wallet
	transactions  []models.Transaction
	transfers     []models.Transfer
	billPayments  []models.BillPayment
	bankAccounts  map[string]models.BankAccount
	bankTxs       map[string]models.BankTransaction
	moneyRequests map[string]models.MoneyRequest
}

type memTx struct {
	db   *MemoryDatabase
	snap snapshot
	done bool
}

func (d *MemoryDatabase) BeginTx(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.txMu.Lock()

	d.mu.Lock()
	snap := snapshot{
		wallets:       copyMap(d.wallets),
		transactions:  append([]models.Transaction(nil), d.transactions...),
		transfers:     append([]models.Transfer(nil), d.transfers...),
		billPayments:  append([]models.BillPayment(nil), d.billPayments...),
		bankAccounts:  copyMap(d.bankAccounts),
		bankTxs:       copyMap(d.bankTxs),
		moneyRequests: copyMap(d.moneyRequests),
	}
	d.mu.Unlock()

	return &memTx{db: d, snap: snap}, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.db.txMu.Unlock()
	return nil
}

// Rollback restores the snapshot taken at BeginTx. After Commit it is a
// no-op, which matches how callers defer it.
func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	t.db.mu.Lock()
	t.db.wallets = t.snap.wallets
	t.db.transactions = t.snap.transactions
	t.db.transfers = t.snap.transfers
	t.db.billPayments = t.snap.billPayments
	t.db.bankAccounts = t.snap.bankAccounts
	t.db.bankTxs = t.snap.bankTxs
	t.db.moneyRequests = t.snap.moneyRequests
	t.db.mu.Unlock()

	t.db.txMu.Unlock()
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *MemoryDatabase) Close() error { return nil }

func (d *MemoryDatabase) User() repository.UserRepository {
	return &memoryUserRepo{db: d}
}

func (d *MemoryDatabase) Wallet() repository.WalletRepository {
	return &memoryWalletRepo{db: d}
}

func (d *MemoryDatabase) Otp() repository.OtpRepository {
	return &memoryOtpRepo{db: d}
}

func (d *MemoryDatabase) Transaction() repository.TransactionRepository {
	return &memoryTransactionRepo{db: d}
}

func (d *MemoryDatabase) Transfer() repository.TransferRepository {
	return &memoryTransferRepo{db: d}
}

func (d *MemoryDatabase) Notification() repository.NotificationRepository {
	return &memoryNotificationRepo{db: d}
}

func (d *MemoryDatabase) Billing() repository.BillingRepository {
	return &memoryBillingRepo{db: d}
}

func (d *MemoryDatabase) Bank() repository.BankRepository {
	return &memoryBankRepo{db: d}
}

func (d *MemoryDatabase) MoneyRequest() repository.MoneyRequestRepository {
	return &memoryMoneyRequestRepo{db: d}
}

func (d *MemoryDatabase) FraudLog() repository.FraudLogRepository {
	return &memoryFraudLogRepo{db: d}
}
