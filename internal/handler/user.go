package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/budget-tracker-api/internal/payload"
	"github.com/vasapolrittideah/budget-tracker-api/internal/usecase"
	"github.com/vasapolrittideah/budget-tracker-api/shared/validation"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(
	userUsecase usecase.UserUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		logger:      logger,
	}
}

// Get handles GET /users/get. Requires authentication.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "missing principal")
		return
	}

	user, err := h.userUsecase.GetUser(r.Context(), email)
	if err != nil {
		h.writeUserError(w, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, payload.UserResponse{
		ID:               user.ID.Hex(),
		Email:            user.Email,
		RegistrationDate: user.CreatedAt,
		Verified:         user.Verified,
	})
}

// Delete handles DELETE /users/delete. Requires authentication.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "missing principal")
		return
	}

	if err := h.userUsecase.DeleteUser(r.Context(), email); err != nil {
		h.writeUserError(w, err, "failed to delete user")
		return
	}

	writeText(w, http.StatusOK, "User is deleted!")
}

// ChangePassword handles PATCH /users/change-password. Requires authentication.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "missing principal")
		return
	}

	var req payload.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userUsecase.ChangePassword(r.Context(), email, req.NewPassword); err != nil {
		h.writeUserError(w, err, "failed to change password")
		return
	}

	writeText(w, http.StatusOK, "Password was changed.")
}

// ResetPassword handles PATCH /users/reset-password?email=. Unauthenticated:
// the caller proves control of the mailbox by receiving the new password.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.validator.Var(email, "required,email"); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid email format!")
		return
	}

	if err := h.userUsecase.ResetPassword(r.Context(), email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeText(w, http.StatusBadRequest, "No user with this email!")
		case errors.Is(err, usecase.ErrEmailNotVerified):
			writeText(w, http.StatusBadRequest, "User email is not verified!")
		default:
			h.logger.Error().Err(err).Msg("failed to reset password")
			writeText(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeText(w, http.StatusOK, "Password is changed Check your email!")
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		writeText(w, http.StatusUnauthorized, "Incorrect user data!")
	case errors.Is(err, usecase.ErrEmailNotVerified):
		writeText(w, http.StatusForbidden, "Email is not verified!")
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		writeText(w, http.StatusInternalServerError, "something went wrong")
	}
}
