package http

import (
	"errors"
	"net/http"

	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/httpx"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// writeServiceError maps service sentinels to HTTP responses. Validation
// failures and a taken email share one body so the register route cannot be
// used to probe which addresses exist.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest,
			"InvalidRequest", "The request body is missing or malformed.")
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest,
			"InvalidInput", "The email or password does not meet the requirements.")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized,
			"InvalidCredentials", "Invalid email or password.")
	case errors.Is(err, service.ErrAccountNotConfirmed):
		httpx.WriteError(w, http.StatusForbidden,
			"AccountNotConfirmed", "Confirm your email address first.")
	case errors.Is(err, service.ErrAlreadyAuthenticated):
		httpx.WriteError(w, http.StatusBadRequest,
			"AlreadyAuthenticated", "Already signed in.")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		httpx.WriteError(w, http.StatusUnauthorized,
			"InvalidRefreshToken", "The refresh token is invalid or expired.")
	case errors.Is(err, service.ErrUnauthenticated):
		httpx.WriteError(w, http.StatusUnauthorized,
			"Unauthenticated", "Authentication required.")
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusForbidden,
			"Unauthorized", "Insufficient permissions.")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound,
			"UserNotFound", "No such user.")
	case errors.Is(err, service.ErrCodeInvalid):
		httpx.WriteError(w, http.StatusBadRequest,
			"CodeInvalid", "The code was not found or has expired.")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"InternalError", "Something went wrong.")
	}
}
