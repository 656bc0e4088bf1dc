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

type SendMoneyInput struct {
	SenderWalletID     string
	ReceiverIdentifier string
	Amount             decimal.Decimal
	OtpCode            string
	Description        string
}

// TransferReceipt is what the sender gets back after a completed transfer.
type TransferReceipt struct {
	TransferID   string          `json:"transfer_id"`
	ReceiverName string          `json:"receiver_name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SendMoney moves money between two wallets of the same currency. The sender
// proves intent with a transfer OTP; the receiver is resolved by email or
// phone number. Debit, credit, the transfer record, and both ledger entries
// land in one database transaction, and both wallet rows are locked in id
// order for its duration so concurrent sends against the same wallet
// serialize instead of losing updates.
func (l *Ledger) SendMoney(ctx context.Context, senderUserID string, input SendMoneyInput) (*TransferReceipt, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	senderWallet, found, err := l.db.Wallet().GetOne(input.SenderWalletID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}
	if senderWallet.UserID != senderUserID {
		return nil, ErrForbidden
	}
	if senderWallet.Status != models.WalletStatusActive {
		return nil, ErrWalletOnHold
	}

	if err := l.otp.Consume(senderUserID, input.OtpCode, models.OtpPurposeTransfer); err != nil {
		if err == ErrInvalidOtp {
			l.logFraud(senderUserID, models.FraudTypeTooManyAttempts, "invalid transfer otp")
		}
		return nil, err
	}

	receiver, found, err := l.db.User().GetByEmailOrPhone(input.ReceiverIdentifier)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReceiverNotFound
	}

	receiverWallet, found, err := l.db.Wallet().GetByUserAndCurrency(receiver.ID, senderWallet.Currency)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReceiverNotFound
	}
	if receiverWallet.ID == senderWallet.ID {
		return nil, ErrSameWallet
	}

	if input.Amount.GreaterThan(senderWallet.DailyLimit) {
		l.logFraud(senderUserID, models.FraudTypeUnusualAmount,
			fmt.Sprintf("transfer of %s exceeds daily limit %s", input.Amount, senderWallet.DailyLimit))
		return nil, ErrLimitExceeded
	}

	transferID, createdAt, err := l.executeTransfer(ctx, senderWallet.ID, receiverWallet.ID, senderWallet.Currency, input.Amount, input.Description)
	if err != nil {
		return nil, err
	}

	amountText := funcs.FormatMoney(input.Amount, senderWallet.Currency)

	l.notify(&NotificationEvent{
		EventID: uuid.NewString(),
		UserID:  senderUserID,
		Title:   "Transfer sent",
		Body:    fmt.Sprintf("You sent %s to %s.", amountText, receiver.FullName()),
		Type:    models.NotificationTypeTransaction,
	})
	l.notify(&NotificationEvent{
		EventID: uuid.NewString(),
		UserID:  receiver.ID,
		Title:   "Money received",
		Body:    fmt.Sprintf("You received %s.", amountText),
		Type:    models.NotificationTypeTransaction,
	})

	return &TransferReceipt{
		TransferID:   transferID,
		ReceiverName: receiver.FullName(),
		Amount:       input.Amount,
		Currency:     senderWallet.Currency,
		Status:       models.TransactionStatusCompleted,
		CreatedAt:    createdAt,
	}, nil
}

// executeTransfer runs the atomic core shared by direct sends and accepted
// money requests. Callers have already authorized the sender and validated
// the amount.
func (l *Ledger) executeTransfer(ctx context.Context, senderWalletID, receiverWalletID, currency string, amount decimal.Decimal, description string) (string, time.Time, error) {
	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	defer tx.Rollback()

	// Locking in id order means two opposite-direction transfers between the
	// same pair of wallets can never deadlock each other.
	first, second := senderWalletID, receiverWalletID
	if second < first {
		first, second = second, first
	}

	for _, id := range []string{first, second} {
		_, found, err := l.db.Wallet().LockForUpdate(tx, id)
		if err != nil {
			if isSerializationFailure(err) {
				return "", time.Time{}, ErrConflict
			}
			return "", time.Time{}, err
		}
		if !found {
			return "", time.Time{}, ErrWalletNotFound
		}
	}

	debited, err := l.db.Wallet().Debit(tx, senderWalletID, amount)
	if err != nil {
		return "", time.Time{}, err
	}
	if !debited {
		return "", time.Time{}, ErrInsufficientBalance
	}

	if err := l.db.Wallet().Credit(tx, receiverWalletID, amount); err != nil {
		return "", time.Time{}, err
	}

	transferID, err := l.db.Transfer().Insert(&models.Transfer{
		SenderWalletID:   senderWalletID,
		ReceiverWalletID: receiverWalletID,
		Amount:           amount,
		Currency:         currency,
		Status:           models.TransactionStatusCompleted,
	}, tx)
	if err != nil {
		return "", time.Time{}, err
	}

	entries := []models.Transaction{
		{
			WalletID:    senderWalletID,
			Type:        models.TransactionTypeTransfer,
			Amount:      amount.Neg(),
			Currency:    currency,
			Status:      models.TransactionStatusCompleted,
			Description: nullString(description),
			Reference:   transferID,
		},
		{
			WalletID:    receiverWalletID,
			Type:        models.TransactionTypeTransfer,
			Amount:      amount,
			Currency:    currency,
			Status:      models.TransactionStatusCompleted,
			Description: nullString(description),
			Reference:   transferID,
		},
	}
	for i := range entries {
		if _, err := l.db.Transaction().Insert(&entries[i], tx); err != nil {
			return "", time.Time{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return "", time.Time{}, ErrConflict
		}
		return "", time.Time{}, err
	}

	return transferID, time.Now(), nil
}
