package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omarsabra/mahfaza/internal/funcs"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

// Deposit pulls money from the user's simulated bank account into a wallet.
// The bank leg and the wallet leg commit together: a deposit either lands in
// full or not at all, and the bank transaction row records which.
func (l *Ledger) Deposit(ctx context.Context, userID, walletID string, amount decimal.Decimal) (*models.BankTransaction, error) {
	return l.bankMove(ctx, userID, walletID, amount, models.BankTransactionTypeDeposit)
}

// Withdraw pushes money from a wallet out to the user's simulated bank
// account.
func (l *Ledger) Withdraw(ctx context.Context, userID, walletID string, amount decimal.Decimal) (*models.BankTransaction, error) {
	return l.bankMove(ctx, userID, walletID, amount, models.BankTransactionTypeWithdraw)
}

func (l *Ledger) bankMove(ctx context.Context, userID, walletID string, amount decimal.Decimal, moveType string) (*models.BankTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

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
	if wallet.Status != models.WalletStatusActive {
		return nil, ErrWalletOnHold
	}

	account, found, err := l.db.Bank().GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBankAccountNotFound
	}

	// The intent is recorded as pending before the simulated network round
	// trip, so an interrupted move leaves an auditable pending row rather
	// than nothing.
	bankTx := &models.BankTransaction{
		UserID: userID,
		Amount: amount,
		Type:   moveType,
		Status: models.TransactionStatusPending,
	}
	bankTxID, err := l.db.Bank().InsertTransaction(bankTx, nil)
	if err != nil {
		return nil, err
	}
	bankTx.ID = bankTxID

	// Stand-in for the latency of a real bank network round trip.
	if l.bankDelay > 0 {
		select {
		case <-time.After(l.bankDelay):
		case <-ctx.Done():
			l.markBankTransactionFailed(bankTxID)
			return nil, ctx.Err()
		}
	}

	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, found, err = l.db.Bank().LockAccountForUpdate(tx, account.ID); err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConflict
		}
		return nil, err
	} else if !found {
		return nil, ErrBankAccountNotFound
	}

	if _, found, err = l.db.Wallet().LockForUpdate(tx, wallet.ID); err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConflict
		}
		return nil, err
	} else if !found {
		return nil, ErrWalletNotFound
	}

	var walletEntryType string

	switch moveType {
	case models.BankTransactionTypeDeposit:
		debited, err := l.db.Bank().DebitAccount(tx, account.ID, amount)
		if err != nil {
			return nil, err
		}
		if !debited {
			l.markBankTransactionFailed(bankTxID)
			return nil, ErrInsufficientBankFunds
		}
		if err := l.db.Wallet().Credit(tx, wallet.ID, amount); err != nil {
			return nil, err
		}
		walletEntryType = models.TransactionTypeDeposit

	case models.BankTransactionTypeWithdraw:
		debited, err := l.db.Wallet().Debit(tx, wallet.ID, amount)
		if err != nil {
			return nil, err
		}
		if !debited {
			l.markBankTransactionFailed(bankTxID)
			return nil, ErrInsufficientBalance
		}
		if err := l.db.Bank().CreditAccount(tx, account.ID, amount); err != nil {
			return nil, err
		}
		walletEntryType = models.TransactionTypeWithdraw
	}

	if err := l.db.Bank().UpdateTransactionStatus(bankTxID, models.TransactionStatusCompleted, tx); err != nil {
		return nil, err
	}

	entryAmount := amount
	if moveType == models.BankTransactionTypeWithdraw {
		entryAmount = amount.Neg()
	}

	_, err = l.db.Transaction().Insert(&models.Transaction{
		WalletID:  wallet.ID,
		Type:      walletEntryType,
		Amount:    entryAmount,
		Currency:  wallet.Currency,
		Status:    models.TransactionStatusCompleted,
		Reference: bankTxID,
	}, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	bankTx.Status = models.TransactionStatusCompleted
	bankTx.CreatedAt = time.Now()

	title := "Deposit completed"
	verb := "deposited into"
	if moveType == models.BankTransactionTypeWithdraw {
		title = "Withdrawal completed"
		verb = "withdrawn from"
	}
	l.notify(&NotificationEvent{
		EventID: uuid.NewString(),
		UserID:  userID,
		Title:   title,
		Body:    fmt.Sprintf("%s was %s your %s wallet.", funcs.FormatMoney(amount, wallet.Currency), verb, wallet.Currency),
		Type:    models.NotificationTypeTransaction,
	})

	return bankTx, nil
}

// markBankTransactionFailed flips a pending bank transaction to failed
// outside any transaction. The move has already been refused at this point.
func (l *Ledger) markBankTransactionFailed(id string) {
	if err := l.db.Bank().UpdateTransactionStatus(id, models.TransactionStatusFailed, nil); err != nil {
		l.logger.Error("bank transaction status update failed", "error", err, "bank_transaction_id", id)
	}
}

// BankAccount returns the user's simulated bank account.
func (l *Ledger) BankAccount(userID string) (*models.BankAccount, error) {
	account, found, err := l.db.Bank().GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBankAccountNotFound
	}
	return account, nil
}
