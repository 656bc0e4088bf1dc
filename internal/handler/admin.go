package handler

import (
	"net/http"
	"time"

	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/shopspring/decimal"
)

// fraudLogWindow is how far back the fraud log endpoint looks.
const fraudLogWindow = 24 * time.Hour

func (h *RouteHandler) HandleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.DB.User().GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]userProfile, len(users))
	for i := range users {
		views[i] = profileFromUser(&users[i])
	}

	err = response.JSONOkResponse(w, views, "Users retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type adminWalletView struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *RouteHandler) HandleAdminListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.DB.Wallet().GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]adminWalletView, len(wallets))
	for i, wallet := range wallets {
		views[i] = adminWalletView{
			ID:        wallet.ID,
			UserID:    wallet.UserID,
			Currency:  wallet.Currency,
			Balance:   wallet.Balance,
			Status:    wallet.Status,
			CreatedAt: wallet.CreatedAt,
		}
	}

	err = response.JSONOkResponse(w, views, "Wallets retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type fraudLogView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *RouteHandler) HandleAdminListFraudLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.DB.FraudLog().Recent(fraudLogWindow)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	views := make([]fraudLogView, len(logs))
	for i, entry := range logs {
		views[i] = fraudLogView{
			ID:        entry.ID,
			UserID:    entry.UserID,
			Type:      entry.Type,
			Details:   entry.Details.String,
			CreatedAt: entry.CreatedAt,
		}
	}

	err = response.JSONOkResponse(w, views, "Fraud logs retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
