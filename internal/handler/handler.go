package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/omarsabra/mahfaza/internal/cache"
	"github.com/omarsabra/mahfaza/internal/config"
	"github.com/omarsabra/mahfaza/internal/errHandler"
	"github.com/omarsabra/mahfaza/internal/file"
	"github.com/omarsabra/mahfaza/internal/helper"
	"github.com/omarsabra/mahfaza/internal/ledger"
	"github.com/omarsabra/mahfaza/internal/otp"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/smtp"
)

type RouteHandler struct {
	DB           repository.Database
	Ledger       *ledger.Ledger
	Otp          *otp.Engine
	Config       *config.Config
	ErrHandler   *errHandler.ErrorHandler
	Helper       *helper.HelperRepository
	Mailer       smtp.MailerInterface
	Cache        *cache.Cache
	FileUploader *file.FileUploader
}

func NewRouteHandler(handler *RouteHandler) *RouteHandler {
	return &RouteHandler{
		DB:           handler.DB,
		Ledger:       handler.Ledger,
		Otp:          handler.Otp,
		Config:       handler.Config,
		ErrHandler:   handler.ErrHandler,
		Helper:       handler.Helper,
		Mailer:       handler.Mailer,
		Cache:        handler.Cache,
		FileUploader: handler.FileUploader,
	}
}

// pageParams reads ?page and ?page_size with the defaults the list endpoints
// share.
func pageParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 1 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 1 && parsed <= 100 {
			pageSize = parsed
		}
	}

	return page, pageSize
}

// respondLedgerError translates the ledger's sentinel errors into HTTP
// responses. Anything unrecognized is a server error.
func (h *RouteHandler) respondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := 0

	switch {
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrReceiverNotFound),
		errors.Is(err, ledger.ErrBillerNotFound),
		errors.Is(err, ledger.ErrBankAccountNotFound),
		errors.Is(err, ledger.ErrRequestNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		status = http.StatusNotFound

	case errors.Is(err, ledger.ErrForbidden):
		h.ErrHandler.Forbidden(w, r)
		return

	case errors.Is(err, ledger.ErrInvalidOtp),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameWallet),
		errors.Is(err, ledger.ErrCurrencyMismatch),
		errors.Is(err, ledger.ErrSelfRequest),
		errors.Is(err, ledger.ErrWalletOnHold),
		errors.Is(err, ledger.ErrBillerInactive),
		errors.Is(err, otp.ErrIssueThrottled):
		status = http.StatusUnprocessableEntity

	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientBankFunds),
		errors.Is(err, ledger.ErrLimitExceeded):
		status = http.StatusUnprocessableEntity

	case errors.Is(err, ledger.ErrDuplicateWallet),
		errors.Is(err, ledger.ErrRequestAlreadyHandled),
		errors.Is(err, ledger.ErrConflict):
		status = http.StatusConflict

	default:
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if writeErr := response.JSONErrorResponse(w, nil, err.Error(), status, nil); writeErr != nil {
		h.ErrHandler.ServerError(w, r, writeErr)
	}
}
