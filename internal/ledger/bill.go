package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/omarsabra/mahfaza/internal/funcs"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

type PayBillInput struct {
	WalletID string
	BillerID string
	Amount   decimal.Decimal
	OtpCode  string
}

// PayBill debits a wallet toward an active biller. It is a single-sided
// movement: the biller has no wallet in the system, so the only ledger entry
// is the payer's debit, referenced by the bill payment record.
func (l *Ledger) PayBill(ctx context.Context, userID string, input PayBillInput) (*models.BillPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	wallet, found, err := l.db.Wallet().GetOne(input.WalletID)
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

	biller, found, err := l.db.Billing().GetBiller(input.BillerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrBillerNotFound
	}
	if !biller.Active {
		return nil, ErrBillerInactive
	}

	if err := l.otp.Consume(userID, input.OtpCode, models.OtpPurposeTransfer); err != nil {
		if err == ErrInvalidOtp {
			l.logFraud(userID, models.FraudTypeTooManyAttempts, "invalid bill payment otp")
		}
		return nil, err
	}

	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, found, err = l.db.Wallet().LockForUpdate(tx, wallet.ID); err != nil {
		if isSerializationFailure(err) {
			return nil, ErrConflict
		}
		return nil, err
	} else if !found {
		return nil, ErrWalletNotFound
	}

	debited, err := l.db.Wallet().Debit(tx, wallet.ID, input.Amount)
	if err != nil {
		return nil, err
	}
	if !debited {
		return nil, ErrInsufficientBalance
	}

	payment := &models.BillPayment{
		UserID:   userID,
		WalletID: wallet.ID,
		BillerID: biller.ID,
		Amount:   input.Amount,
		Currency: wallet.Currency,
		Status:   models.TransactionStatusCompleted,
	}

	paymentID, err := l.db.Billing().InsertPayment(payment, tx)
	if err != nil {
		return nil, err
	}

	_, err = l.db.Transaction().Insert(&models.Transaction{
		WalletID:    wallet.ID,
		Type:        models.TransactionTypeBill,
		Amount:      input.Amount.Neg(),
		Currency:    wallet.Currency,
		Status:      models.TransactionStatusCompleted,
		Description: nullString("Bill payment to " + biller.Name),
		Reference:   paymentID,
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

	payment.ID = paymentID
	payment.BillerName = biller.Name

	l.notify(&NotificationEvent{
		EventID: uuid.NewString(),
		UserID:  userID,
		Title:   "Bill paid",
		Body:    fmt.Sprintf("Your payment of %s to %s went through.", funcs.FormatMoney(input.Amount, wallet.Currency), biller.Name),
		Type:    models.NotificationTypeTransaction,
	})

	return payment, nil
}

// Billers lists the billers currently accepting payments.
func (l *Ledger) Billers() ([]models.Biller, error) {
	return l.db.Billing().GetActiveBillers()
}

// BillPayments lists a user's past bill payments, newest first.
func (l *Ledger) BillPayments(userID string) ([]models.BillPayment, error) {
	return l.db.Billing().ListPaymentsByUser(userID)
}
