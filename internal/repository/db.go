package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/omarsabra/mahfaza/assets"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Tx is the explicit transaction scope handed out by Database.BeginTx.
// Every repository mutation that must be atomic with others takes one;
// the caller commits or rolls back on every exit path.
type Tx interface {
	Commit() error
	Rollback() error
}

type sqlTx struct {
	*sqlx.Tx
}

// unwrap recovers the sqlx transaction behind a Tx. Passing a Tx that did not
// come from this package's BeginTx is a programming error.
func unwrap(tx Tx) *sqlx.Tx {
	st, ok := tx.(*sqlTx)
	if !ok {
		panic(fmt.Sprintf("repository: foreign Tx implementation %T", tx))
	}
	return st.Tx
}

// Database exposes one repository per aggregate plus the transaction boundary
// they share.
type Database interface {
	User() UserRepository
	Wallet() WalletRepository
	Otp() OtpRepository
	Transaction() TransactionRepository
	Transfer() TransferRepository
	Notification() NotificationRepository
	Billing() BillingRepository
	Bank() BankRepository
	MoneyRequest() MoneyRequestRepository
	FraudLog() FraudLogRepository

	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

type DatabaseImpl struct {
	db *sqlx.DB

	userRepo         UserRepository
	walletRepo       WalletRepository
	otpRepo          OtpRepository
	transactionRepo  TransactionRepository
	transferRepo     TransferRepository
	notificationRepo NotificationRepository
	billingRepo      BillingRepository
	bankRepo         BankRepository
	moneyRequestRepo MoneyRequestRepository
	fraudLogRepo     FraudLogRepository

	mu sync.Mutex
}

// New connects to Postgres and, when automigrate is enabled, brings the schema
// up to date from the embedded migration files.
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx}, nil
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Wallet() WalletRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.walletRepo == nil {
		d.walletRepo = NewWalletRepository(d.db)
	}
	return d.walletRepo
}

func (d *DatabaseImpl) Otp() OtpRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.otpRepo == nil {
		d.otpRepo = NewOtpRepository(d.db)
	}
	return d.otpRepo
}

func (d *DatabaseImpl) Transaction() TransactionRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transactionRepo == nil {
		d.transactionRepo = NewTransactionRepository(d.db)
	}
	return d.transactionRepo
}

func (d *DatabaseImpl) Transfer() TransferRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transferRepo == nil {
		d.transferRepo = NewTransferRepository(d.db)
	}
	return d.transferRepo
}

func (d *DatabaseImpl) Notification() NotificationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.notificationRepo == nil {
		d.notificationRepo = NewNotificationRepository(d.db)
	}
	return d.notificationRepo
}

func (d *DatabaseImpl) Billing() BillingRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.billingRepo == nil {
		d.billingRepo = NewBillingRepository(d.db)
	}
	return d.billingRepo
}

func (d *DatabaseImpl) Bank() BankRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bankRepo == nil {
		d.bankRepo = NewBankRepository(d.db)
	}
	return d.bankRepo
}

func (d *DatabaseImpl) MoneyRequest() MoneyRequestRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.moneyRequestRepo == nil {
		d.moneyRequestRepo = NewMoneyRequestRepository(d.db)
	}
	return d.moneyRequestRepo
}

func (d *DatabaseImpl) FraudLog() FraudLogRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fraudLogRepo == nil {
		d.fraudLogRepo = NewFraudLogRepository(d.db)
	}
	return d.fraudLogRepo
}
