package handler

import (
	"net/http"
	"time"

	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/shopspring/decimal"
)

type transactionView struct {
	ID          string          `json:"id"`
	WalletID    string          `json:"wallet_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}

func viewFromTransaction(t *models.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		WalletID:    t.WalletID,
		Type:        t.Type,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Status:      t.Status,
		Description: t.Description.String,
		Reference:   t.Reference,
		CreatedAt:   t.CreatedAt,
	}
}

func (h *RouteHandler) HandleWalletHistory(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)
	page, pageSize := pageParams(r)

	transactions, total, err := h.Ledger.History(user.ID, r.PathValue("id"), page, pageSize)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	views := make([]transactionView, len(transactions))
	for i := range transactions {
		views[i] = viewFromTransaction(&transactions[i])
	}

	data := map[string]any{
		"transactions": views,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	}
	err = response.JSONOkResponse(w, data, "Transactions retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleTransactionDetails(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	transaction, err := h.Ledger.GetTransaction(user.ID, r.PathValue("id"))
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, viewFromTransaction(transaction), "Transaction retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
