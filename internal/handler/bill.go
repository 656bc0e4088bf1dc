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

type billerView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type billPaymentView struct {
	ID         string          `json:"id"`
	WalletID   string          `json:"wallet_id"`
	BillerName string          `json:"biller_name"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

func viewFromBillPayment(p *models.BillPayment) billPaymentView {
	return billPaymentView{
		ID:         p.ID,
		WalletID:   p.WalletID,
		BillerName: p.BillerName,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
	}
}

func (h *RouteHandler) HandleListBillers(w http.ResponseWriter, r *http.Request) {
	billers, err := h.Ledger.Billers()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]billerView, len(billers))
	for i, b := range billers {
		views[i] = billerView{ID: b.ID, Name: b.Name, Category: b.Category}
	}

	err = response.JSONOkResponse(w, views, "Billers retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandlePayBill(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		WalletID  string              `json:"wallet_id"`
		BillerID  string              `json:"biller_id"`
		Amount    decimal.Decimal     `json:"amount"`
		Otp       string              `json:"otp"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.WalletID), "Wallet is required")
	input.Validator.Check(validator.NotBlank(input.BillerID), "Biller is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")
	input.Validator.Check(validator.Matches(input.Otp, validator.RgxOtpCode), "Code must be 6 digits")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	payment, err := h.Ledger.PayBill(r.Context(), user.ID, ledger.PayBillInput{
		WalletID: input.WalletID,
		BillerID: input.BillerID,
		Amount:   input.Amount,
		OtpCode:  input.Otp,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, viewFromBillPayment(payment), "Bill paid successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleListBillPayments(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	payments, err := h.Ledger.BillPayments(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]billPaymentView, len(payments))
	for i := range payments {
		views[i] = viewFromBillPayment(&payments[i])
	}

	err = response.JSONOkResponse(w, views, "Bill payments retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
