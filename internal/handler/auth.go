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

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	authUsecase         usecase.AuthUsecase
	confirmationUsecase usecase.ConfirmationUsecase
	validator           *validation.Validator
	logger              *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	confirmationUsecase usecase.ConfirmationUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:         authUsecase,
		confirmationUsecase: confirmationUsecase,
		validator:           validator,
		logger:              logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid email format!")
		return
	}

	if err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		if errors.Is(err, usecase.ErrUserAlreadyExists) {
			writeText(w, http.StatusConflict, "Email is already used!")
			return
		}

		h.logger.Error().Err(err).Msg("failed to register user")
		writeText(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeText(w, http.StatusCreated, "User was created! Please, confirm the user email address!")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeText(w, http.StatusUnauthorized, "Incorrect user data!")
		case errors.Is(err, usecase.ErrEmailNotVerified):
			writeText(w, http.StatusForbidden, "Email is not verified!")
		default:
			h.logger.Error().Err(err).Msg("failed to log in user")
			writeText(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.TokenResponse{Token: token})
}

// Confirm handles GET /auth/confirm?token=.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")

	err := h.confirmationUsecase.ConfirmEmail(r.Context(), tokenValue)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTokenNotFound):
			writeText(w, http.StatusNotFound, "Invalid confirmation token!")
		case errors.Is(err, usecase.ErrTokenAlreadyConfirmed):
			writeText(w, http.StatusConflict, "Email is already confirmed!")
		case errors.Is(err, usecase.ErrTokenExpired):
			writeText(w, http.StatusGone, "Confirmation token has expired! Please, login and click OK to send confirmation email!")
		default:
			h.logger.Error().Err(err).Msg("failed to confirm email")
			writeText(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeText(w, http.StatusOK, "User email is confirmed. You can close this tab!")
}

// Refresh handles GET /auth/refresh. Requires authentication.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	email, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeText(w, http.StatusUnauthorized, "missing principal")
		return
	}

	token, err := h.authUsecase.RefreshSessionToken(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeText(w, http.StatusUnauthorized, "Incorrect user data!")
		case errors.Is(err, usecase.ErrEmailNotVerified):
			writeText(w, http.StatusForbidden, "Email is not verified!")
		default:
			h.logger.Error().Err(err).Msg("failed to refresh session token")
			writeText(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.TokenResponse{Token: token})
}

// SendConfirmationEmail handles POST /auth/send-confirmation-email.
func (h *AuthHandler) SendConfirmationEmail(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.confirmationUsecase.ResendConfirmation(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeText(w, http.StatusUnauthorized, "Incorrect user data!")
		case errors.Is(err, usecase.ErrEmailAlreadyVerified):
			writeText(w, http.StatusBadRequest, "User email is already verified!")
		case errors.Is(err, usecase.ErrConfirmationAlreadySent):
			writeText(w, http.StatusAccepted, "Confirmation email is already sent!")
		default:
			h.logger.Error().Err(err).Msg("failed to resend confirmation email")
			writeText(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	writeText(w, http.StatusCreated, "Email was sent. Confirm your email address!")
}
