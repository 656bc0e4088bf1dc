package handler

import (
	"net/http"
	"time"

	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/request"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/validator"
	"github.com/shopspring/decimal"
)

type walletView struct {
	ID           string          `json:"id"`
	Currency     string          `json:"currency"`
	Balance      decimal.Decimal `json:"balance"`
	Status       string          `json:"status"`
	DailyLimit   decimal.Decimal `json:"daily_limit"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	CreatedAt    time.Time       `json:"created_at"`
}

func viewFromWallet(wallet *models.Wallet) walletView {
	return walletView{
		ID:           wallet.ID,
		Currency:     wallet.Currency,
		Balance:      wallet.Balance,
		Status:       wallet.Status,
		DailyLimit:   wallet.DailyLimit,
		MonthlyLimit: wallet.MonthlyLimit,
		CreatedAt:    wallet.CreatedAt,
	}
}

func (h *RouteHandler) HandleCreateWallet(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Currency  string              `json:"currency"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.Matches(input.Currency, validator.RgxCurrency), "Currency must be a 3-letter ISO code")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	wallet, err := h.Ledger.CreateWallet(user.ID, input.Currency)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONCreatedResponse(w, viewFromWallet(wallet), "Wallet created successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	wallets, err := h.Ledger.Wallets(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]walletView, len(wallets))
	for i := range wallets {
		views[i] = viewFromWallet(&wallets[i])
	}

	err = response.JSONOkResponse(w, views, "Wallets retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleWalletDetails(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	wallet, err := h.Ledger.Wallet(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, viewFromWallet(wallet), "Wallet retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleWalletBalance(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	balance, currency, err := h.Ledger.Balance(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	data := map[string]any{
		"balance":  balance,
		"currency": currency,
	}
	err = response.JSONOkResponse(w, data, "Balance retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
