package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/omarsabra/mahfaza/internal/funcs"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/shopspring/decimal"
)

type CreateMoneyRequestInput struct {
	RecipientIdentifier string
	Amount              decimal.Decimal
	Currency            string
}

// CreateMoneyRequest records a pending request for the recipient to send
// money back. No balance moves until the recipient accepts.
func (l *Ledger) CreateMoneyRequest(userID string, input CreateMoneyRequestInput) (*models.MoneyRequest, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	recipient, found, err := l.db.User().GetByEmailOrPhone(input.RecipientIdentifier)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReceiverNotFound
	}
	if recipient.ID == userID {
		return nil, ErrSelfRequest
	}

	request := &models.MoneyRequest{
		FromUserID: userID,
		ToUserID:   recipient.ID,
		Amount:     input.Amount,
		Currency:   input.Currency,
		Status:     models.MoneyRequestStatusPending,
	}

	id, err := l.db.MoneyRequest().Insert(request)
	if err != nil {
		return nil, err
	}
	request.ID = id

	requester, found, err := l.db.User().GetOne(userID)
	if err == nil && found {
		l.notify(&NotificationEvent{
			EventID: uuid.NewString(),
			UserID:  recipient.ID,
			Title:   "Money request",
			Body:    fmt.Sprintf("%s requested %s from you.", requester.FullName(), funcs.FormatMoney(input.Amount, input.Currency)),
			Type:    models.NotificationTypeTransaction,
		})
	}

	return request, nil
}

type RespondToRequestInput struct {
	RequestID string
	Accept    bool
	WalletID  string
	OtpCode   string
}

// RespondToMoneyRequest lets the recipient of a pending request accept or
// reject it. Accepting runs the dual-entry transfer from the recipient's
// wallet to the requester and flips the request to accepted inside the same
// database transaction, so a request can never be paid twice.
func (l *Ledger) RespondToMoneyRequest(ctx context.Context, userID string, input RespondToRequestInput) (*models.MoneyRequest, error) {
	request, found, err := l.db.MoneyRequest().GetOne(input.RequestID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRequestNotFound
	}
	if request.ToUserID != userID {
		return nil, ErrForbidden
	}
	if request.Status != models.MoneyRequestStatusPending {
		return nil, ErrRequestAlreadyHandled
	}

	if !input.Accept {
		updated, err := l.db.MoneyRequest().UpdateStatusIfPending(request.ID, models.MoneyRequestStatusRejected, nil)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, ErrRequestAlreadyHandled
		}
		request.Status = models.MoneyRequestStatusRejected
		return request, nil
	}

	payerWallet, found, err := l.db.Wallet().GetOne(input.WalletID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}
	if payerWallet.UserID != userID {
		return nil, ErrForbidden
	}
	if payerWallet.Status != models.WalletStatusActive {
		return nil, ErrWalletOnHold
	}
	if payerWallet.Currency != request.Currency {
		return nil, ErrCurrencyMismatch
	}

	requesterWallet, found, err := l.db.Wallet().GetByUserAndCurrency(request.FromUserID, request.Currency)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReceiverNotFound
	}

	if err := l.otp.Consume(userID, input.OtpCode, models.OtpPurposeTransfer); err != nil {
		if err == ErrInvalidOtp {
			l.logFraud(userID, models.FraudTypeTooManyAttempts, "invalid money request otp")
		}
		return nil, err
	}

	if request.Amount.GreaterThan(payerWallet.DailyLimit) {
		l.logFraud(userID, models.FraudTypeUnusualAmount,
			fmt.Sprintf("request settlement of %s exceeds daily limit %s", request.Amount, payerWallet.DailyLimit))
		return nil, ErrLimitExceeded
	}

	if err := l.settleRequest(ctx, request, payerWallet.ID, requesterWallet.ID); err != nil {
		return nil, err
	}
	request.Status = models.MoneyRequestStatusAccepted

	payer, found, err := l.db.User().GetOne(userID)
	if err == nil && found {
		l.notify(&NotificationEvent{
			EventID: uuid.NewString(),
			UserID:  request.FromUserID,
			Title:   "Request accepted",
			Body:    fmt.Sprintf("%s sent you %s for your request.", payer.FullName(), funcs.FormatMoney(request.Amount, request.Currency)),
			Type:    models.NotificationTypeTransaction,
		})
	}

	return request, nil
}

// settleRequest is the accept path's atomic core: dual-entry transfer plus
// the pending-to-accepted flip, one commit.
func (l *Ledger) settleRequest(ctx context.Context, request *models.MoneyRequest, payerWalletID, requesterWalletID string) error {
	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	first, second := payerWalletID, requesterWalletID
	if second < first {
		first, second = second, first
	}

	for _, id := range []string{first, second} {
		_, found, err := l.db.Wallet().LockForUpdate(tx, id)
		if err != nil {
			if isSerializationFailure(err) {
				return ErrConflict
			}
			return err
		}
		if !found {
			return ErrWalletNotFound
		}
	}

	// The conditional flip happens before money moves. If another response
	// already won, nothing below runs and the rollback undoes the locks.
	updated, err := l.db.MoneyRequest().UpdateStatusIfPending(request.ID, models.MoneyRequestStatusAccepted, tx)
	if err != nil {
		return err
	}
	if !updated {
		return ErrRequestAlreadyHandled
	}

	debited, err := l.db.Wallet().Debit(tx, payerWalletID, request.Amount)
	if err != nil {
		return err
	}
	if !debited {
		return ErrInsufficientBalance
	}

	if err := l.db.Wallet().Credit(tx, requesterWalletID, request.Amount); err != nil {
		return err
	}

	transferID, err := l.db.Transfer().Insert(&models.Transfer{
		SenderWalletID:   payerWalletID,
		ReceiverWalletID: requesterWalletID,
		Amount:           request.Amount,
		Currency:         request.Currency,
		Status:           models.TransactionStatusCompleted,
	}, tx)
	if err != nil {
		return err
	}

	description := "Money request settlement"
	entries := []models.Transaction{
		{
			WalletID:    payerWalletID,
			Type:        models.TransactionTypeTransfer,
			Amount:      request.Amount.Neg(),
			Currency:    request.Currency,
			Status:      models.TransactionStatusCompleted,
			Description: nullString(description),
			Reference:   transferID,
		},
		{
			WalletID:    requesterWalletID,
			Type:        models.TransactionTypeTransfer,
			Amount:      request.Amount,
			Currency:    request.Currency,
			Status:      models.TransactionStatusCompleted,
			Description: nullString(description),
			Reference:   transferID,
		},
	}
	for i := range entries {
		if _, err := l.db.Transaction().Insert(&entries[i], tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return ErrConflict
		}
		return err
	}

	return nil
}

// SentRequests lists requests the user created, newest first.
func (l *Ledger) SentRequests(userID string) ([]models.MoneyRequest, error) {
	return l.db.MoneyRequest().ListSent(userID)
}

// ReceivedRequests lists requests addressed to the user, newest first.
func (l *Ledger) ReceivedRequests(userID string) ([]models.MoneyRequest, error) {
	return l.db.MoneyRequest().ListReceived(userID)
}
