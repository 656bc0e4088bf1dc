package handler

import (
	"net/http"
	"time"

	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/request"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/validator"
	"github.com/shopspring/decimal"
)

func (h *RouteHandler) HandleSendMoney(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		WalletID    string              `json:"wallet_id"`
		Receiver    string              `json:"receiver"`
		Amount      decimal.Decimal     `json:"amount"`
		Otp         string              `json:"otp"`
		Description string              `json:"description"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.WalletID), "Wallet is required")
	input.Validator.Check(validator.NotBlank(input.Receiver), "Receiver email or phone number is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")
	input.Validator.Check(validator.Matches(input.Otp, validator.RgxOtpCode), "Code must be 6 digits")
	input.Validator.Check(validator.MaxRunes(input.Description, 200), "Description is too long")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	receipt, err := h.Ledger.SendMoney(r.Context(), user.ID, ledger.SendMoneyInput{
		SenderWalletID:     input.WalletID,
		ReceiverIdentifier: input.Receiver,
		Amount:             input.Amount,
		OtpCode:            input.Otp,
		Description:        input.Description,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, receipt, "Transfer completed successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type transferView struct {
	ID               string          `json:"id"`
	SenderWalletID   string          `json:"sender_wallet_id"`
	ReceiverWalletID string          `json:"receiver_wallet_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (h *RouteHandler) HandleListTransfers(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	transfers, err := h.Ledger.Transfers(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	views := make([]transferView, len(transfers))
	for i, t := range transfers {
		views[i] = transferView{
			ID:               t.ID,
			SenderWalletID:   t.SenderWalletID,
			ReceiverWalletID: t.ReceiverWalletID,
			Amount:           t.Amount,
			Currency:         t.Currency,
			Status:           t.Status,
			CreatedAt:        t.CreatedAt,
		}
	}

	err = response.JSONOkResponse(w, views, "Transfers retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
