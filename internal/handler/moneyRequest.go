package handler

import (
	"net/http"
	"time"

	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/request"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/validator"
	"github.com/shopspring/decimal"
)

type moneyRequestView struct {
	ID         string          `json:"id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

func viewFromMoneyRequest(mr *models.MoneyRequest) moneyRequestView {
	return moneyRequestView{
		ID:         mr.ID,
		FromUserID: mr.FromUserID,
		ToUserID:   mr.ToUserID,
		Amount:     mr.Amount,
		Currency:   mr.Currency,
		Status:     mr.Status,
		CreatedAt:  mr.CreatedAt,
	}
}

func viewsFromMoneyRequests(requests []models.MoneyRequest) []moneyRequestView {
	views := make([]moneyRequestView, len(requests))
	for i := range requests {
		views[i] = viewFromMoneyRequest(&requests[i])
	}
	return views
}

func (h *RouteHandler) HandleCreateMoneyRequest(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Recipient string              `json:"recipient"`
		Amount    decimal.Decimal     `json:"amount"`
		Currency  string              `json:"currency"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Currency == "" {
		input.Currency = models.DefaultCurrency
	}

	input.Validator.Check(validator.NotBlank(input.Recipient), "Recipient email or phone number is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")
	input.Validator.Check(validator.Matches(input.Currency, validator.RgxCurrency), "Currency must be a 3-letter ISO code")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	created, err := h.Ledger.CreateMoneyRequest(user.ID, ledger.CreateMoneyRequestInput{
		RecipientIdentifier: input.Recipient,
		Amount:              input.Amount,
		Currency:            input.Currency,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONCreatedResponse(w, viewFromMoneyRequest(created), "Money request sent")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListSentRequests(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	requests, err := h.Ledger.SentRequests(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, viewsFromMoneyRequests(requests), "Money requests retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListReceivedRequests(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	requests, err := h.Ledger.ReceivedRequests(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, viewsFromMoneyRequests(requests), "Money requests retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleRespondToMoneyRequest(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Accept    bool                `json:"accept"`
		WalletID  string              `json:"wallet_id"`
		Otp       string              `json:"otp"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Accept {
		input.Validator.Check(validator.NotBlank(input.WalletID), "Wallet is required to accept a request")
		input.Validator.Check(validator.Matches(input.Otp, validator.RgxOtpCode), "Code must be 6 digits")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	updated, err := h.Ledger.RespondToMoneyRequest(r.Context(), user.ID, ledger.RespondToRequestInput{
		RequestID: r.PathValue("id"),
		Accept:    input.Accept,
		WalletID:  input.WalletID,
		OtpCode:   input.Otp,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	message := "Money request rejected"
	if input.Accept {
		message = "Money request accepted"
	}
	err = response.JSONOkResponse(w, viewFromMoneyRequest(updated), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
