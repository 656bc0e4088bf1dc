package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/request"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/validator"
	"github.com/shopspring/decimal"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

// bankSeedBalance is the play-money balance of the simulated bank account
// every new user gets. Deposits draw from it.
var bankSeedBalance = decimal.NewFromInt(10000)

// Registration provisions the full account in one database transaction: the
// user row, a default-currency wallet and the seeded bank account. A failure
// on any insert rolls everything back so a user can never exist half set up.
func (h *RouteHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email       string              `json:"email"`
		Password    string              `json:"password"`
		FirstName   string              `json:"first_name"`
		LastName    string              `json:"last_name"`
		PhoneNumber string              `json:"phone_number"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	_, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(validator.MinRunes(input.FirstName, 2), "First name is too short")

	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")
	input.Validator.Check(validator.MinRunes(input.LastName, 2), "Last name is too short")

	input.Validator.Check(validator.NotBlank(input.PhoneNumber), "Phone number is required")
	input.Validator.Check(validator.Matches(input.PhoneNumber, validator.RgxPhoneNumber), "Phone number must be in international format")

	found, err = h.DB.User().CheckIfPhoneNumberExist(input.PhoneNumber)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "Phone number has been registered")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	tx, err := h.DB.BeginTx(r.Context())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer tx.Rollback()

	createdUser := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		HashedPassword: hashedPassword,
	}

	userID, err := h.DB.User().Insert(createdUser, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	_, err = h.DB.Wallet().Insert(&models.Wallet{
		UserID:       userID,
		Currency:     models.DefaultCurrency,
		DailyLimit:   decimal.NewFromInt(5000),
		MonthlyLimit: decimal.NewFromInt(20000),
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	_, err = h.DB.Bank().InsertAccount(&models.BankAccount{
		UserID:        userID,
		AccountNumber: accountNumberFromPhone(input.PhoneNumber),
		Balance:       bankSeedBalance,
	}, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := tx.Commit(); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = createdUser.FullName()

		err := h.Mailer.Send(createdUser.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}
		return nil
	})

	err = response.JSONCreatedResponse(w, nil, "Account created successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Login is split in two steps. This one checks the password and issues a
// 6-digit login code; HandleAuthVerifyOtp swaps the code for a token. The
// code is returned in the response body as the stand-in for SMS delivery.
func (h *RouteHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		input.Validator.Check(passwordMatches, "Incorrect email/password")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if user.Status != models.UserStatusActive {
		message := "Account has been suspended. Please contact support"
		if err := response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil); err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	code, err := h.Otp.Issue(user, models.OtpPurposeLogin)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	data := map[string]string{
		// Simulated SMS channel.
		"otp": code,
	}
	err = response.JSONOkResponse(w, data, "Enter the code to finish signing in", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAuthVerifyOtp(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Otp       string              `json:"otp"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(validator.Matches(input.Otp, validator.RgxOtpCode), "Code must be 6 digits")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.DB.User().GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.FailedValidation(w, r, []string{"Invalid or expired OTP"})
		return
	}

	if err := h.Otp.Consume(user.ID, input.Otp, models.OtpPurposeLogin); err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		if err := h.DB.User().UpdateLastLogin(user.ID); err != nil {
			log.Printf("Error recording last login: %v", err)
			return err
		}
		return nil
	})

	var claims jwt.Claims
	claims.Subject = user.ID

	expiry := time.Now().Add(24 * time.Hour)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.Config.BaseURL
	claims.Audiences = []string{h.Config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.Config.Jwt.SecretKey))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
	}
	err = response.JSONOkResponse(w, data, "Login succesful", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// accountNumberFromPhone derives a stable 10-digit account number from the
// registration phone number.
func accountNumberFromPhone(phone string) string {
	digits := strings.TrimLeft(phone, "+")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
