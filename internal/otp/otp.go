package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/omarsabra/mahfaza/internal/cache"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/repository"
	"github.com/omarsabra/mahfaza/internal/smtp"
)

var (
	// ErrInvalidOtp covers every verification failure: no matching code,
	// wrong purpose, already used, or expired. The sub-condition is
	// deliberately not disclosed to callers.
	ErrInvalidOtp = errors.New("invalid or expired OTP")

	// ErrIssueThrottled is returned when a code of the same purpose was
	// issued for the user within the last minute.
	ErrIssueThrottled = errors.New("an OTP was recently sent, please wait before requesting another")
)

const issueThrottle = time.Minute

// Engine issues short-lived 6-digit codes and consumes them exactly once.
// Delivery is simulated: the code goes out by email best-effort AND is
// returned to the caller, which stands in for a real SMS gateway.
type Engine struct {
	repo   repository.OtpRepository
	cache  *cache.Cache
	mailer smtp.MailerInterface
	logger *slog.Logger
}

func New(repo repository.OtpRepository, cache *cache.Cache, mailer smtp.MailerInterface, logger *slog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		cache:  cache,
		mailer: mailer,
		logger: logger,
	}
}

// Issue creates a fresh code for the user and purpose. Any outstanding unused
// code of the same purpose is invalidated first, so at most one code can
// authorize an operation at any moment.
func (e *Engine) Issue(user *models.User, purpose string) (string, error) {
	if e.cache != nil {
		key := fmt.Sprintf("otp:issued:%s:%s", user.ID, purpose)

		stored, err := e.cache.SetIfAbsent(key, "1", issueThrottle)
		if err != nil {
			// Redis being down should not block logins or transfers;
			// the throttle is an abuse guard, not a correctness guard.
			e.logger.Error("otp throttle check failed", "error", err)
		} else if !stored {
			return "", ErrIssueThrottled
		}
	}

	if err := e.repo.InvalidateUnused(user.ID, purpose); err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	_, err = e.repo.Insert(&models.OtpCode{
		UserID:    user.ID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(models.OtpValidity),
	})
	if err != nil {
		return "", err
	}

	if e.mailer != nil {
		go func() {
			data := map[string]any{
				"Name": user.FirstName,
				"Code": code,
			}
			if err := e.mailer.Send(user.Email, data, "otp.tmpl"); err != nil {
				e.logger.Error("otp email dispatch failed", "error", err, "user_id", user.ID)
			}
		}()
	}

	return code, nil
}

// Consume atomically verifies and burns a code. There is no separate Verify:
// a code that passed verification is already used, which closes the window
// where one code could authorize two concurrent operations.
func (e *Engine) Consume(userID, code, purpose string) error {
	ok, err := e.repo.Consume(userID, code, purpose)
	if err != nil {
		return err
	}

	if !ok {
		return ErrInvalidOtp
	}

	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
