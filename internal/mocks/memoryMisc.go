package mocks

import (
	"database/sql"
	"sort"
	"time"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/shopspring/decimal"
)

type memoryOtpRepo struct {
	db *MemoryDatabase
}

func (r *memoryOtpRepo) Insert(otp *models.OtpCode) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *otp
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.otps[id] = stored

	return id, nil
}

func (r *memoryOtpRepo) InvalidateUnused(userID, purpose string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, otp := range r.db.otps {
		if otp.UserID == userID && otp.Purpose == purpose && !otp.Used {
			otp.Used = true
			r.db.otps[id] = otp
		}
	}
	return nil
}

func (r *memoryOtpRepo) Consume(userID, code, purpose string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, otp := range r.db.otps {
		if otp.UserID == userID && otp.Code == code && otp.Purpose == purpose &&
			!otp.Used && otp.ExpiresAt.After(time.Now()) {
			otp.Used = true
			r.db.otps[id] = otp
			return true, nil
		}
	}
	return false, nil
}

type memoryNotificationRepo struct {
	db *MemoryDatabase
}

func (r *memoryNotificationRepo) Insert(n *models.Notification) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *n
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.notifications[id] = stored

	return id, nil
}

func (r *memoryNotificationRepo) ListByUser(userID string, page, pageSize int) ([]models.Notification, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []models.Notification
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= total {
		return []models.Notification{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func (r *memoryNotificationRepo) MarkRead(id, userID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n, ok := r.db.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	r.db.notifications[id] = n
	return true, nil
}

func (r *memoryNotificationRepo) UnreadCount(userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	count := 0
	for _, n := range r.db.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

type memoryBillingRepo struct {
	db *MemoryDatabase
}

func (r *memoryBillingRepo) GetActiveBillers() ([]models.Biller, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var billers []models.Biller
	for _, b := range r.db.billers {
		if b.Active {
			billers = append(billers, b)
		}
	}
	sort.Slice(billers, func(i, j int) bool { return billers[i].Name < billers[j].Name })
	return billers, nil
}

func (r *memoryBillingRepo) GetBiller(id string) (*models.Biller, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, ok := r.db.billers[id]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

// AddBiller seeds a biller for tests.
func (d *MemoryDatabase) AddBiller(name, category string, active bool) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID()
	d.billers[id] = models.Biller{
		ID:        id,
		Name:      name,
		Category:  category,
		Active:    active,
		CreatedAt: time.Now(),
	}
	return id
}

func (r *memoryBillingRepo) InsertPayment(p *models.BillPayment, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *p
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.billPayments = append(r.db.billPayments, stored)

	return id, nil
}

func (r *memoryBillingRepo) ListPaymentsByUser(userID string) ([]models.BillPayment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []models.BillPayment
	for i := len(r.db.billPayments) - 1; i >= 0; i-- {
		p := r.db.billPayments[i]
		if p.UserID == userID {
			if biller, ok := r.db.billers[p.BillerID]; ok {
				p.BillerName = biller.Name
			}
			matched = append(matched, p)
		}
	}
	return matched, nil
}

type memoryBankRepo struct {
	db *MemoryDatabase
}

func (r *memoryBankRepo) InsertAccount(account *models.BankAccount, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *account
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.bankAccounts[id] = stored

	return id, nil
}

func (r *memoryBankRepo) GetAccountByUserID(userID string) (*models.BankAccount, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, account := range r.db.bankAccounts {
		if account.UserID == userID {
			a := account
			return &a, true, nil
		}
	}
	return nil, false, nil
}

func (r *memoryBankRepo) LockAccountForUpdate(tx repository.Tx, id string) (*models.BankAccount, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	account, ok := r.db.bankAccounts[id]
	if !ok {
		return nil, false, nil
	}
	return &account, true, nil
}

func (r *memoryBankRepo) DebitAccount(tx repository.Tx, id string, amount decimal.Decimal) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	account, ok := r.db.bankAccounts[id]
	if !ok || account.Balance.LessThan(amount) {
		return false, nil
	}
	account.Balance = account.Balance.Sub(amount)
	r.db.bankAccounts[id] = account
	return true, nil
}

func (r *memoryBankRepo) CreditAccount(tx repository.Tx, id string, amount decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	account, ok := r.db.bankAccounts[id]
	if !ok {
		return nil
	}
	account.Balance = account.Balance.Add(amount)
	r.db.bankAccounts[id] = account
	return nil
}

func (r *memoryBankRepo) InsertTransaction(bt *models.BankTransaction, tx repository.Tx) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *bt
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.bankTxs[id] = stored

	return id, nil
}

func (r *memoryBankRepo) UpdateTransactionStatus(id, status string, tx repository.Tx) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	bt, ok := r.db.bankTxs[id]
	if !ok {
		return nil
	}
	bt.Status = status
	r.db.bankTxs[id] = bt
	return nil
}

type memoryMoneyRequestRepo struct {
	db *MemoryDatabase
}

func (r *memoryMoneyRequestRepo) Insert(mr *models.MoneyRequest) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *mr
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.moneyRequests[id] = stored

	return id, nil
}

func (r *memoryMoneyRequestRepo) GetOne(id string) (*models.MoneyRequest, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	mr, ok := r.db.moneyRequests[id]
	if !ok {
		return nil, false, nil
	}
	return &mr, true, nil
}

func (r *memoryMoneyRequestRepo) ListSent(userID string) ([]models.MoneyRequest, error) {
	return r.list(func(mr models.MoneyRequest) bool { return mr.FromUserID == userID })
}

func (r *memoryMoneyRequestRepo) ListReceived(userID string) ([]models.MoneyRequest, error) {
	return r.list(func(mr models.MoneyRequest) bool { return mr.ToUserID == userID })
}

func (r *memoryMoneyRequestRepo) list(match func(models.MoneyRequest) bool) ([]models.MoneyRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var matched []models.MoneyRequest
	for _, mr := range r.db.moneyRequests {
		if match(mr) {
			matched = append(matched, mr)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return matched, nil
}

func (r *memoryMoneyRequestRepo) UpdateStatusIfPending(id, status string, tx repository.Tx) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	mr, ok := r.db.moneyRequests[id]
	if !ok || mr.Status != models.MoneyRequestStatusPending {
		return false, nil
	}
	mr.Status = status
	mr.UpdatedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.db.moneyRequests[id] = mr
	return true, nil
}

type memoryFraudLogRepo struct {
	db *MemoryDatabase
}

func (r *memoryFraudLogRepo) Insert(fl *models.FraudLog) (string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id := r.db.nextID()
	stored := *fl
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.db.fraudLogs = append(r.db.fraudLogs, stored)

	return id, nil
}

func (r *memoryFraudLogRepo) Recent(within time.Duration) ([]models.FraudLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	cutoff := time.Now().Add(-within)
	var matched []models.FraudLog
	for i := len(r.db.fraudLogs) - 1; i >= 0; i-- {
		if r.db.fraudLogs[i].CreatedAt.After(cutoff) {
			matched = append(matched, r.db.fraudLogs[i])
		}
	}
	return matched, nil
}
