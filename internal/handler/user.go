package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cradoe/gopass"
	"github.com/omarsabra/mahfaza/internal/context"
	"github.com/omarsabra/mahfaza/internal/models"
	"github.com/omarsabra/mahfaza/internal/request"
	"github.com/omarsabra/mahfaza/internal/response"
	"github.com/omarsabra/mahfaza/internal/validator"
)

type userProfile struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func profileFromUser(user *models.User) userProfile {
	return userProfile{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		PhoneNumber:    user.PhoneNumber,
		Role:           user.Role,
		Status:         user.Status,
		ProfilePicture: user.ProfilePicture.String,
	}
}

func (h *RouteHandler) HandleUserProfile(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	err := response.JSONOkResponse(w, profileFromUser(user), "Profile retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		CurrentPassword string              `json:"current_password"`
		NewPassword     string              `json:"new_password"`
		Validator       validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	matches, err := gopass.ComparePasswordAndHash(input.CurrentPassword, user.HashedPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(matches, "Current password is incorrect")

	_, errs := gopass.Validate(input.NewPassword)
	if errs != nil {
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.NewPassword)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := h.DB.User().UpdatePassword(user.ID, hashedPassword); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, nil, "Password changed successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// Profile pictures pass through a temp file on their way to the CDN so the
// uploader can work from a path.
func (h *RouteHandler) HandleChangeProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	uploaded, header, err := r.FormFile("picture")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}
	defer uploaded.Close()

	tmp, err := os.CreateTemp("", "avatar-*"+filepath.Ext(header.Filename))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, uploaded); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	pictureURL, err := h.FileUploader.UploadFile(tmp.Name())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if err := h.DB.User().ChangeProfilePicture(user.ID, pictureURL); err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{"profile_picture": pictureURL}
	err = response.JSONOkResponse(w, data, "Profile picture updated", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleRequestOtp issues a transfer authorization code for the signed-in
// user. Like login codes, it is returned in the body as simulated delivery.
func (h *RouteHandler) HandleRequestOtp(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	code, err := h.Otp.Issue(user, models.OtpPurposeTransfer)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}

	data := map[string]string{"otp": code}
	err = response.JSONOkResponse(w, data, "Authorization code issued", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
