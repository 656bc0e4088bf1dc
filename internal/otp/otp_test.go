package otp

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/omarsabra/mahfaza/internal/cache"
	"github.com/omarsabra/mahfaza/internal/mocks"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *mocks.MemoryDatabase) {
	t.Helper()

	db := mocks.NewMemoryDatabase()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db.Otp(), nil, nil, logger), db
}

func testUser() *models.User {
	return &models.User{
		ID:        "1",
		FirstName: "Amira",
		Email:     "amira@example.com",
	}
}

func TestIssueAndConsume(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := testUser()

	code, err := engine.Issue(user, models.OtpPurposeLogin)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, engine.Consume(user.ID, code, models.OtpPurposeLogin))
}

func TestConsumeIsSingleUse(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := testUser()

	code, err := engine.Issue(user, models.OtpPurposeTransfer)
	require.NoError(t, err)

	require.NoError(t, engine.Consume(user.ID, code, models.OtpPurposeTransfer))
	require.ErrorIs(t, engine.Consume(user.ID, code, models.OtpPurposeTransfer), ErrInvalidOtp)
}

func TestConsumeChecksPurpose(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := testUser()

	code, err := engine.Issue(user, models.OtpPurposeLogin)
	require.NoError(t, err)

	require.ErrorIs(t, engine.Consume(user.ID, code, models.OtpPurposeTransfer), ErrInvalidOtp)
}

func TestConsumeRejectsExpiredCode(t *testing.T) {
	engine, db := newTestEngine(t)

	_, err := db.Otp().Insert(&models.OtpCode{
		UserID:    "1",
		Code:      "123456",
		Purpose:   models.OtpPurposeLogin,
		ExpiresAt: time.Now().Add(-time.Second),
	})
	require.NoError(t, err)

	require.ErrorIs(t, engine.Consume("1", "123456", models.OtpPurposeLogin), ErrInvalidOtp)
}

func TestIssueInvalidatesPreviousCode(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := testUser()

	first, err := engine.Issue(user, models.OtpPurposeTransfer)
	require.NoError(t, err)

	second, err := engine.Issue(user, models.OtpPurposeTransfer)
	require.NoError(t, err)

	if first != second {
		require.ErrorIs(t, engine.Consume(user.ID, first, models.OtpPurposeTransfer), ErrInvalidOtp)
	}
	require.NoError(t, engine.Consume(user.ID, second, models.OtpPurposeTransfer))
}

func TestIssueThrottlesRepeatRequests(t *testing.T) {
	mr := miniredis.RunT(t)

	db := mocks.NewMemoryDatabase()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := New(db.Otp(), cache.New(mr.Addr(), 0), nil, logger)
	user := testUser()

	_, err := engine.Issue(user, models.OtpPurposeLogin)
	require.NoError(t, err)

	_, err = engine.Issue(user, models.OtpPurposeLogin)
	require.ErrorIs(t, err, ErrIssueThrottled)

	// A different purpose has its own throttle window.
	_, err = engine.Issue(user, models.OtpPurposeTransfer)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = engine.Issue(user, models.OtpPurposeLogin)
	require.NoError(t, err)
}
