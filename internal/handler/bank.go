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

type bankTransactionView struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func viewFromBankTransaction(bt *models.BankTransaction) bankTransactionView {
	return bankTransactionView{
		ID:        bt.ID,
		Amount:    bt.Amount,
		Type:      bt.Type,
		Status:    bt.Status,
		CreatedAt: bt.CreatedAt,
	}
}

func (h *RouteHandler) HandleBankAccount(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	account, err := h.Ledger.BankAccount(user.ID)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	data := map[string]any{
		"account_number": account.AccountNumber,
		"balance":        account.Balance,
	}
	err = response.JSONOkResponse(w, data, "Bank account retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleBankMove(w, r, models.BankTransactionTypeDeposit)
}

func (h *RouteHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleBankMove(w, r, models.BankTransactionTypeWithdraw)
}

func (h *RouteHandler) handleBankMove(w http.ResponseWriter, r *http.Request, moveType string) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		WalletID  string              `json:"wallet_id"`
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.WalletID), "Wallet is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	var bankTx *models.BankTransaction
	if moveType == models.BankTransactionTypeDeposit {
		bankTx, err = h.Ledger.Deposit(r.Context(), user.ID, input.WalletID, input.Amount)
	} else {
		bankTx, err = h.Ledger.Withdraw(r.Context(), user.ID, input.WalletID, input.Amount)
	}
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	message := "Deposit completed successfully"
	if moveType == models.BankTransactionTypeWithdraw {
		message = "Withdrawal completed successfully"
	}
	err = response.JSONOkResponse(w, viewFromBankTransaction(bankTx), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
