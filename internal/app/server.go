package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverShutdownPeriod = 30 * time.Second
	serverReadTimeout    = 5 * time.Second
	serverWriteTimeout   = 10 * time.Second
	serverIdleTimeout    = time.Minute
)

// ServeHTTP runs the API server until SIGINT or SIGTERM, then drains
// in-flight requests and background tasks before returning.
func (app *Application) ServeHTTP() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.Config.HttpPort),
		Handler:      app.routes(),
		ErrorLog:     slog.NewLogLogger(app.Logger.Handler(), slog.LevelWarn),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	shutdownErr := make(chan error, 1)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		app.Logger.Info("shutting down server", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownPeriod)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			shutdownErr <- err
			return
		}

		shutdownErr <- app.Shutdown(ctx)
	}()

	app.Logger.Info("starting server", "addr", srv.Addr, "base_url", app.Config.BaseURL)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	app.Logger.Info("stopped server", "addr", srv.Addr)
	return nil
}
