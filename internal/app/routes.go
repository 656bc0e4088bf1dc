package app

import (
	"net/http"

	"github.com/omarsabra/mahfaza/internal/handler"
	"github.com/omarsabra/mahfaza/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	routeHandler := handler.NewRouteHandler(&handler.RouteHandler{
		DB:           app.DB,
		Ledger:       app.Ledger,
		Otp:          app.Otp,
		Config:       &app.Config,
		ErrHandler:   app.errorHandler,
		Helper:       app.helper,
		Mailer:       app.Mailer,
		Cache:        app.Cache,
		FileUploader: app.FileUploader,
	})

	mux.HandleFunc("GET /status", routeHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", routeHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", routeHandler.HandleAuthLogin)
	mux.HandleFunc("POST /auth/verify-otp", routeHandler.HandleAuthVerifyOtp)

	authed := func(h http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireAuthenticatedUser(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireAdminUser(h)
	}

	mux.Handle("GET /me", authed(routeHandler.HandleUserProfile))
	mux.Handle("PATCH /me/password", authed(routeHandler.HandleChangePassword))
	mux.Handle("PATCH /me/picture", authed(routeHandler.HandleChangeProfilePicture))
	mux.Handle("POST /otp", authed(routeHandler.HandleRequestOtp))

	mux.Handle("POST /wallets", authed(routeHandler.HandleCreateWallet))
	mux.Handle("GET /wallets", authed(routeHandler.HandleListWallets))
	mux.Handle("GET /wallets/{id}", authed(routeHandler.HandleWalletDetails))
	mux.Handle("GET /wallets/{id}/balance", authed(routeHandler.HandleWalletBalance))
	mux.Handle("GET /wallets/{id}/transactions", authed(routeHandler.HandleWalletHistory))
	mux.Handle("GET /wallets/{id}/transfers", authed(routeHandler.HandleListTransfers))

	mux.Handle("POST /transfers", authed(routeHandler.HandleSendMoney))
	mux.Handle("GET /transactions/{id}", authed(routeHandler.HandleTransactionDetails))

	mux.Handle("GET /billers", authed(routeHandler.HandleListBillers))
	mux.Handle("POST /bills", authed(routeHandler.HandlePayBill))
	mux.Handle("GET /bills", authed(routeHandler.HandleListBillPayments))

	mux.Handle("GET /bank/account", authed(routeHandler.HandleBankAccount))
	mux.Handle("POST /bank/deposit", authed(routeHandler.HandleDeposit))
	mux.Handle("POST /bank/withdraw", authed(routeHandler.HandleWithdraw))

	mux.Handle("POST /money-requests", authed(routeHandler.HandleCreateMoneyRequest))
	mux.Handle("GET /money-requests/sent", authed(routeHandler.HandleListSentRequests))
	mux.Handle("GET /money-requests/received", authed(routeHandler.HandleListReceivedRequests))
	mux.Handle("POST /money-requests/{id}/respond", authed(routeHandler.HandleRespondToMoneyRequest))

	mux.Handle("GET /notifications", authed(routeHandler.HandleListNotifications))
	mux.Handle("PATCH /notifications/{id}/read", authed(routeHandler.HandleMarkNotificationRead))
	mux.Handle("GET /notifications/unread-count", authed(routeHandler.HandleUnreadNotificationCount))

	mux.Handle("GET /admin/users", admin(routeHandler.HandleAdminListUsers))
	mux.Handle("GET /admin/wallets", admin(routeHandler.HandleAdminListWallets))
	mux.Handle("GET /admin/fraud-logs", admin(routeHandler.HandleAdminListFraudLogs))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
