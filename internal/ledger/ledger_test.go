package ledger

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/omarsabra/mahfaza/internal/mocks"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/otp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, *mocks.MemoryDatabase, *otp.Engine) {
	t.Helper()

	db := mocks.NewMemoryDatabase()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := otp.New(db.Otp(), nil, nil, logger)

	return New(db, engine, nil, logger, 0), db, engine
}

func seedUser(t *testing.T, db *mocks.MemoryDatabase, firstName, email, phone string) *models.User {
	t.Helper()

	id, err := db.User().Insert(&models.User{
		FirstName:   firstName,
		LastName:    "Tester",
		Email:       email,
		PhoneNumber: phone,
	}, nil)
	require.NoError(t, err)

	user, found, err := db.User().GetOne(id)
	require.NoError(t, err)
	require.True(t, found)
	return user
}

func seedWallet(t *testing.T, db *mocks.MemoryDatabase, userID string, balance int64) *models.Wallet {
	t.Helper()

	id, err := db.Wallet().Insert(&models.Wallet{
		UserID:       userID,
		Currency:     models.DefaultCurrency,
		DailyLimit:   decimal.NewFromInt(5000),
		MonthlyLimit: decimal.NewFromInt(20000),
	}, nil)
	require.NoError(t, err)

	if balance > 0 {
		require.NoError(t, db.Wallet().Credit(nil, id, decimal.NewFromInt(balance)))
	}

	wallet, found, err := db.Wallet().GetOne(id)
	require.NoError(t, err)
	require.True(t, found)
	return wallet
}

func issueTransferOtp(t *testing.T, engine *otp.Engine, user *models.User) string {
	t.Helper()

	code, err := engine.Issue(user, models.OtpPurposeTransfer)
	require.NoError(t, err)
	return code
}

func TestSendMoneyMovesBalancesAndWritesPairedEntries(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 1000)
	receiverWallet := seedWallet(t, db, receiver.ID, 0)

	receipt, err := l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(250),
		OtpCode:            issueTransferOtp(t, engine, sender),
		Description:        "lunch",
	})
	require.NoError(t, err)
	require.Equal(t, "Omar Tester", receipt.ReceiverName)
	require.Equal(t, models.TransactionStatusCompleted, receipt.Status)

	balance, _, err := l.Balance(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(750)))

	balance, _, err = l.Balance(receiver.ID, receiverWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(250)))

	senderHistory, total, err := l.History(sender.ID, senderWallet.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.True(t, senderHistory[0].Amount.Equal(decimal.NewFromInt(-250)))
	require.Equal(t, receipt.TransferID, senderHistory[0].Reference)

	receiverHistory, _, err := l.History(receiver.ID, receiverWallet.ID, 1, 20)
	require.NoError(t, err)
	require.True(t, receiverHistory[0].Amount.Equal(decimal.NewFromInt(250)))
	require.Equal(t, receipt.TransferID, receiverHistory[0].Reference)

	transfers, err := l.Transfers(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, receipt.TransferID, transfers[0].ID)
}

func TestSendMoneyInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 100)
	receiverWallet := seedWallet(t, db, receiver.ID, 0)

	_, err := l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(250),
		OtpCode:            issueTransferOtp(t, engine, sender),
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	balance, _, err := l.Balance(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(100)))

	balance, _, err = l.Balance(receiver.ID, receiverWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	_, total, err := l.History(sender.ID, senderWallet.ID, 1, 20)
	require.NoError(t, err)
	require.Zero(t, total)

	transfers, err := l.Transfers(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.Empty(t, transfers)
}

func TestSendMoneyRejectsOtpReplay(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 1000)
	seedWallet(t, db, receiver.ID, 0)

	code := issueTransferOtp(t, engine, sender)
	input := SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(100),
		OtpCode:            code,
	}

	_, err := l.SendMoney(context.Background(), sender.ID, input)
	require.NoError(t, err)

	_, err = l.SendMoney(context.Background(), sender.ID, input)
	require.ErrorIs(t, err, ErrInvalidOtp)

	balance, _, err := l.Balance(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(900)))
}

func TestSendMoneyRejectsExpiredOtp(t *testing.T) {
	l, db, _ := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 1000)
	seedWallet(t, db, receiver.ID, 0)

	_, err := db.Otp().Insert(&models.OtpCode{
		UserID:    sender.ID,
		Code:      "123456",
		Purpose:   models.OtpPurposeTransfer,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(100),
		OtpCode:            "123456",
	})
	require.ErrorIs(t, err, ErrInvalidOtp)
}

func TestSendMoneyEnforcesDailyLimitBeforeMovingMoney(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 10000)
	seedWallet(t, db, receiver.ID, 0)

	_, err := l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(6000),
		OtpCode:            issueTransferOtp(t, engine, sender),
	})
	require.ErrorIs(t, err, ErrLimitExceeded)

	balance, _, err := l.Balance(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(10000)))

	logs, err := db.FraudLog().Recent(time.Hour)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, models.FraudTypeUnusualAmount, logs[0].Type)
}

func TestSendMoneyRejectsSameWallet(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	senderWallet := seedWallet(t, db, sender.ID, 1000)

	_, err := l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: sender.Email,
		Amount:             decimal.NewFromInt(100),
		OtpCode:            issueTransferOtp(t, engine, sender),
	})
	require.ErrorIs(t, err, ErrSameWallet)
}

func TestSendMoneyReceiverWithoutMatchingWallet(t *testing.T) {
	l, db, engine := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	receiver := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	senderWallet := seedWallet(t, db, sender.ID, 1000)

	// The receiver exists but has no wallet in the sender's currency.
	_, err := l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
		SenderWalletID:     senderWallet.ID,
		ReceiverIdentifier: receiver.Email,
		Amount:             decimal.NewFromInt(100),
		OtpCode:            issueTransferOtp(t, engine, sender),
	})
	require.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestSendMoneyRefusesForeignWallet(t *testing.T) {
	l, db, _ := newTestLedger(t)

	owner := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	intruder := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	ownerWallet := seedWallet(t, db, owner.ID, 1000)

	_, err := l.SendMoney(context.Background(), intruder.ID, SendMoneyInput{
		SenderWalletID:     ownerWallet.ID,
		ReceiverIdentifier: owner.Email,
		Amount:             decimal.NewFromInt(100),
		OtpCode:            "123456",
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestConcurrentSendsCannotOverdraw(t *testing.T) {
	l, db, _ := newTestLedger(t)

	sender := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	first := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	second := seedUser(t, db, "Laila", "laila@example.com", "+201007778899")

	senderWallet := seedWallet(t, db, sender.ID, 300)
	firstWallet := seedWallet(t, db, first.ID, 0)
	secondWallet := seedWallet(t, db, second.ID, 0)

	// Two independent codes so both attempts pass OTP verification and the
	// balance is the only thing deciding the race.
	for _, code := range []string{"111111", "222222"} {
		_, err := db.Otp().Insert(&models.OtpCode{
			UserID:    sender.ID,
			Code:      code,
			Purpose:   models.OtpPurposeTransfer,
			ExpiresAt: time.Now().Add(models.OtpValidity),
		})
		require.NoError(t, err)
	}

	results := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, results[0] = l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
			SenderWalletID:     senderWallet.ID,
			ReceiverIdentifier: first.Email,
			Amount:             decimal.NewFromInt(250),
			OtpCode:            "111111",
		})
	}()
	go func() {
		defer wg.Done()
		_, results[1] = l.SendMoney(context.Background(), sender.ID, SendMoneyInput{
			SenderWalletID:     senderWallet.ID,
			ReceiverIdentifier: second.Email,
			Amount:             decimal.NewFromInt(250),
			OtpCode:            "222222",
		})
	}()
	wg.Wait()

	succeeded, failed := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case err == ErrInsufficientBalance:
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)

	balance, _, err := l.Balance(sender.ID, senderWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(50)))

	firstBalance, _, err := l.Balance(first.ID, firstWallet.ID)
	require.NoError(t, err)
	secondBalance, _, err := l.Balance(second.ID, secondWallet.ID)
	require.NoError(t, err)
	require.True(t, firstBalance.Add(secondBalance).Equal(decimal.NewFromInt(250)))
}

func TestCreateWalletRejectsDuplicateCurrency(t *testing.T) {
	l, db, _ := newTestLedger(t)

	user := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")

	_, err := l.CreateWallet(user.ID, "USD")
	require.NoError(t, err)

	_, err = l.CreateWallet(user.ID, "USD")
	require.ErrorIs(t, err, ErrDuplicateWallet)
}

func TestHistoryPaginatesNewestFirst(t *testing.T) {
	l, db, _ := newTestLedger(t)

	user := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	wallet := seedWallet(t, db, user.ID, 0)

	var lastID string
	for i := 0; i < 45; i++ {
		id, err := db.Transaction().Insert(&models.Transaction{
			WalletID:  wallet.ID,
			Type:      models.TransactionTypeDeposit,
			Amount:    decimal.NewFromInt(1),
			Currency:  wallet.Currency,
			Status:    models.TransactionStatusCompleted,
			Reference: "seed",
		}, nil)
		require.NoError(t, err)
		lastID = id
	}

	page1, total, err := l.History(user.ID, wallet.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 45, total)
	require.Len(t, page1, 20)
	require.Equal(t, lastID, page1[0].ID)

	page2, _, err := l.History(user.ID, wallet.ID, 2, 20)
	require.NoError(t, err)
	require.Len(t, page2, 20)

	page3, _, err := l.History(user.ID, wallet.ID, 3, 20)
	require.NoError(t, err)
	require.Len(t, page3, 5)

	page4, total, err := l.History(user.ID, wallet.ID, 4, 20)
	require.NoError(t, err)
	require.Equal(t, 45, total)
	require.Empty(t, page4)
}

func TestHistoryIsOwnerOnly(t *testing.T) {
	l, db, _ := newTestLedger(t)

	owner := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	other := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	wallet := seedWallet(t, db, owner.ID, 0)

	_, _, err := l.History(other.ID, wallet.ID, 1, 20)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestPayBill(t *testing.T) {
	l, db, engine := newTestLedger(t)

	user := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	wallet := seedWallet(t, db, user.ID, 500)
	billerID := db.AddBiller("Cairo Electricity", "utilities", true)
	inactiveID := db.AddBiller("Old Water Co", "utilities", false)

	t.Run("inactive biller", func(t *testing.T) {
		_, err := l.PayBill(context.Background(), user.ID, PayBillInput{
			WalletID: wallet.ID,
			BillerID: inactiveID,
			Amount:   decimal.NewFromInt(100),
			OtpCode:  "123456",
		})
		require.ErrorIs(t, err, ErrBillerInactive)
	})

	t.Run("success", func(t *testing.T) {
		payment, err := l.PayBill(context.Background(), user.ID, PayBillInput{
			WalletID: wallet.ID,
			BillerID: billerID,
			Amount:   decimal.NewFromInt(120),
			OtpCode:  issueTransferOtp(t, engine, user),
		})
		require.NoError(t, err)
		require.Equal(t, "Cairo Electricity", payment.BillerName)

		balance, _, err := l.Balance(user.ID, wallet.ID)
		require.NoError(t, err)
		require.True(t, balance.Equal(decimal.NewFromInt(380)))

		history, _, err := l.History(user.ID, wallet.ID, 1, 20)
		require.NoError(t, err)
		require.Equal(t, models.TransactionTypeBill, history[0].Type)
		require.True(t, history[0].Amount.Equal(decimal.NewFromInt(-120)))
		require.Equal(t, payment.ID, history[0].Reference)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := l.PayBill(context.Background(), user.ID, PayBillInput{
			WalletID: wallet.ID,
			BillerID: billerID,
			Amount:   decimal.NewFromInt(10000),
			OtpCode:  issueTransferOtp(t, engine, user),
		})
		require.ErrorIs(t, err, ErrInsufficientBalance)

		balance, _, err := l.Balance(user.ID, wallet.ID)
		require.NoError(t, err)
		require.True(t, balance.Equal(decimal.NewFromInt(380)))
	})
}

func TestDepositAndWithdraw(t *testing.T) {
	l, db, _ := newTestLedger(t)

	user := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	wallet := seedWallet(t, db, user.ID, 0)

	_, err := db.Bank().InsertAccount(&models.BankAccount{
		UserID:        user.ID,
		AccountNumber: "1000000001",
		Balance:       decimal.NewFromInt(10000),
	}, nil)
	require.NoError(t, err)

	bankTx, err := l.Deposit(context.Background(), user.ID, wallet.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusCompleted, bankTx.Status)

	balance, _, err := l.Balance(user.ID, wallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(500)))

	account, err := l.BankAccount(user.ID)
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(9500)))

	_, err = l.Withdraw(context.Background(), user.ID, wallet.ID, decimal.NewFromInt(200))
	require.NoError(t, err)

	balance, _, err = l.Balance(user.ID, wallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(300)))

	account, err = l.BankAccount(user.ID)
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(9700)))

	_, err = l.Withdraw(context.Background(), user.ID, wallet.ID, decimal.NewFromInt(5000))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	history, total, err := l.History(user.ID, wallet.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, models.TransactionTypeWithdraw, history[0].Type)
	require.True(t, history[0].Amount.Equal(decimal.NewFromInt(-200)))
}

func TestMoneyRequestLifecycle(t *testing.T) {
	l, db, engine := newTestLedger(t)

	requester := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	payer := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	requesterWallet := seedWallet(t, db, requester.ID, 0)
	payerWallet := seedWallet(t, db, payer.ID, 1000)

	_, err := l.CreateMoneyRequest(requester.ID, CreateMoneyRequestInput{
		RecipientIdentifier: requester.Email,
		Amount:              decimal.NewFromInt(100),
		Currency:            models.DefaultCurrency,
	})
	require.ErrorIs(t, err, ErrSelfRequest)

	request, err := l.CreateMoneyRequest(requester.ID, CreateMoneyRequestInput{
		RecipientIdentifier: payer.Email,
		Amount:              decimal.NewFromInt(100),
		Currency:            models.DefaultCurrency,
	})
	require.NoError(t, err)
	require.Equal(t, models.MoneyRequestStatusPending, request.Status)

	// Only the recipient may respond.
	_, err = l.RespondToMoneyRequest(context.Background(), requester.ID, RespondToRequestInput{
		RequestID: request.ID,
		Accept:    true,
	})
	require.ErrorIs(t, err, ErrForbidden)

	accepted, err := l.RespondToMoneyRequest(context.Background(), payer.ID, RespondToRequestInput{
		RequestID: request.ID,
		Accept:    true,
		WalletID:  payerWallet.ID,
		OtpCode:   issueTransferOtp(t, engine, payer),
	})
	require.NoError(t, err)
	require.Equal(t, models.MoneyRequestStatusAccepted, accepted.Status)

	balance, _, err := l.Balance(requester.ID, requesterWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(100)))

	balance, _, err = l.Balance(payer.ID, payerWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(900)))

	_, err = l.RespondToMoneyRequest(context.Background(), payer.ID, RespondToRequestInput{
		RequestID: request.ID,
		Accept:    true,
		WalletID:  payerWallet.ID,
		OtpCode:   "123456",
	})
	require.ErrorIs(t, err, ErrRequestAlreadyHandled)
}

func TestMoneyRequestReject(t *testing.T) {
	l, db, _ := newTestLedger(t)

	requester := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	payer := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	seedWallet(t, db, requester.ID, 0)
	payerWallet := seedWallet(t, db, payer.ID, 1000)

	request, err := l.CreateMoneyRequest(requester.ID, CreateMoneyRequestInput{
		RecipientIdentifier: payer.Email,
		Amount:              decimal.NewFromInt(100),
		Currency:            models.DefaultCurrency,
	})
	require.NoError(t, err)

	rejected, err := l.RespondToMoneyRequest(context.Background(), payer.ID, RespondToRequestInput{
		RequestID: request.ID,
		Accept:    false,
	})
	require.NoError(t, err)
	require.Equal(t, models.MoneyRequestStatusRejected, rejected.Status)

	balance, _, err := l.Balance(payer.ID, payerWallet.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(1000)))
}

func TestGetTransactionEnforcesOwnership(t *testing.T) {
	l, db, _ := newTestLedger(t)

	owner := seedUser(t, db, "Amira", "amira@example.com", "+201001112233")
	other := seedUser(t, db, "Omar", "omar@example.com", "+201004445566")
	wallet := seedWallet(t, db, owner.ID, 0)

	id, err := db.Transaction().Insert(&models.Transaction{
		WalletID:  wallet.ID,
		Type:      models.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(10),
		Currency:  wallet.Currency,
		Status:    models.TransactionStatusCompleted,
		Reference: "seed",
	}, nil)
	require.NoError(t, err)

	got, err := l.GetTransaction(owner.ID, id)
	require.NoError(t, err)
	require.Equal(t, id, got.ID)

	_, err = l.GetTransaction(other.ID, id)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = l.GetTransaction(owner.ID, "missing")
	require.ErrorIs(t, err, ErrTransactionNotFound)
}
