package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/omarsabra/mahfaza/internal/config"
	"github.com/omarsabra/mahfaza/internal/errHandler"
	"github.com/omarsabra/mahfaza/internal/helper"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/mocks"
	"github.com/omarsabra/mahfaza/internal/otp"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*RouteHandler, *mocks.MemoryDatabase, *sync.WaitGroup) {
	t.Helper()

	db := mocks.NewMemoryDatabase()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := &mocks.CapturingMailer{}

	cfg := &config.Config{}
	cfg.BaseURL = "http://localhost:4444"
	cfg.Jwt.SecretKey = "test_secret"

	errorHandler := errHandler.New("", mailer, logger, &cfg.BaseURL)

	var wg sync.WaitGroup
	helperRepo := helper.New(&cfg.BaseURL, &wg, errorHandler)

	otpEngine := otp.New(db.Otp(), nil, mailer, logger)
	walletLedger := ledger.New(db, otpEngine, nil, logger, 0)

	h := NewRouteHandler(&RouteHandler{
		DB:         db,
		Ledger:     walletLedger,
		Otp:        otpEngine,
		Config:     cfg,
		ErrHandler: errorHandler,
		Helper:     helperRepo,
		Mailer:     mailer,
	})

	return h, db, &wg
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestHandleAuthRegisterProvisionsWalletAndBankAccount(t *testing.T) {
	h, db, wg := newTestHandler(t)

	rec := postJSON(t, h.HandleAuthRegister, map[string]any{
		"email":        "amira@example.com",
		"password":     "S3cure!Passw0rd",
		"first_name":   "Amira",
		"last_name":    "Hassan",
		"phone_number": "+201001112233",
	})
	wg.Wait()

	require.Equal(t, http.StatusCreated, rec.Code)

	user, found, err := db.User().GetByEmail("amira@example.com")
	require.NoError(t, err)
	require.True(t, found)

	wallets, _, err := db.Wallet().GetAllByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, "EGP", wallets[0].Currency)
	require.True(t, wallets[0].Balance.IsZero())

	account, found, err := db.Bank().GetAccountByUserID(user.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1001112233", account.AccountNumber)
	require.False(t, account.Balance.IsZero())
}

func TestHandleAuthRegisterRejectsDuplicateEmail(t *testing.T) {
	h, _, wg := newTestHandler(t)

	body := map[string]any{
		"email":        "amira@example.com",
		"password":     "S3cure!Passw0rd",
		"first_name":   "Amira",
		"last_name":    "Hassan",
		"phone_number": "+201001112233",
	}

	rec := postJSON(t, h.HandleAuthRegister, body)
	wg.Wait()
	require.Equal(t, http.StatusCreated, rec.Code)

	body["phone_number"] = "+201004445566"
	rec = postJSON(t, h.HandleAuthRegister, body)
	wg.Wait()
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginFlowEndsWithToken(t *testing.T) {
	h, _, wg := newTestHandler(t)

	rec := postJSON(t, h.HandleAuthRegister, map[string]any{
		"email":        "amira@example.com",
		"password":     "S3cure!Passw0rd",
		"first_name":   "Amira",
		"last_name":    "Hassan",
		"phone_number": "+201001112233",
	})
	wg.Wait()
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.HandleAuthLogin, map[string]any{
		"email":    "amira@example.com",
		"password": "S3cure!Passw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var loginBody struct {
		Data struct {
			Otp string `json:"otp"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginBody))
	require.Len(t, loginBody.Data.Otp, 6)

	rec = postJSON(t, h.HandleAuthVerifyOtp, map[string]any{
		"email": "amira@example.com",
		"otp":   loginBody.Data.Otp,
	})
	wg.Wait()
	require.Equal(t, http.StatusOK, rec.Code)

	var verifyBody struct {
		Data struct {
			AuthToken string `json:"auth_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verifyBody))
	require.NotEmpty(t, verifyBody.Data.AuthToken)

	// A login code is single use.
	rec = postJSON(t, h.HandleAuthVerifyOtp, map[string]any{
		"email": "amira@example.com",
		"otp":   loginBody.Data.Otp,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, _, wg := newTestHandler(t)

	rec := postJSON(t, h.HandleAuthRegister, map[string]any{
		"email":        "amira@example.com",
		"password":     "S3cure!Passw0rd",
		"first_name":   "Amira",
		"last_name":    "Hassan",
		"phone_number": "+201001112233",
	})
	wg.Wait()
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.HandleAuthLogin, map[string]any{
		"email":    "amira@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
