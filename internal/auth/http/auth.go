package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/httpx"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// AuthHandler serves the register/login/logout/refresh routes.
type AuthHandler struct {
	Auth         *service.AuthService
	Sessions     *service.SessionService
	Verification *service.VerificationService
	CookieSecure bool
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public shape of an account. The password hash never
// leaves the service.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      int       `json:"role"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      int(u.Role),
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
	}
}

func decodeCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return credentialsRequest{}, service.ErrInvalidRequest
	}
	return req, nil
}

// alreadyAuthenticated reports whether the caller presented a working access
// token. Unconfirmed counts: that caller holds a session too.
func (h *AuthHandler) alreadyAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, _, err = h.Auth.Resolve(r.Context(), cookie.Value)
	return err == nil || errors.Is(err, service.ErrAccountNotConfirmed)
}

// HandleRegister creates an unconfirmed account, signs it in so the caller
// can reach the verification routes, and kicks off the confirmation mail.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if h.alreadyAuthenticated(r) {
		writeServiceError(w, r, service.ErrAlreadyAuthenticated)
		return
	}

	req, err := decodeCredentials(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sess, err := h.Sessions.Login(ctx, user.ID, httpx.ClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Mail failure is not fatal to registration; the send route can retry.
	if _, err := h.Verification.IssueEmailConfirmation(ctx, user); err != nil {
		log.Error("failed to issue confirmation mail", "user_id", user.ID, "error", err)
	}

	log.Info("user registered", "user_id", user.ID)
	setSessionCookies(w, h.Sessions, sess, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin verifies credentials and activates the caller's one session,
// invalidating whatever token was live before.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.alreadyAuthenticated(r) {
		writeServiceError(w, r, service.ErrAlreadyAuthenticated)
		return
	}

	req, err := decodeCredentials(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, sess, err := h.Auth.Login(ctx, req.Email, req.Password, httpx.ClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	setSessionCookies(w, h.Sessions, sess, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleLogout disables the caller's session and clears both cookies.
// Runs behind SessionAuth.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := SessionFromContext(ctx)
	if !ok {
		writeServiceError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.Auth.Logout(ctx, sess); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("user logged out", "user_id", sess.UserID)
	clearSessionCookies(w, h.CookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh rotates the session named by the refresh cookie. On an
// invalid token the refresh cookie is cleared so the client stops retrying a
// dead credential.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var refreshToken string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	user, sess, err := h.Auth.Refresh(ctx, refreshToken, httpx.ClientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			clearCookie(w, refreshTokenCookie, h.CookieSecure)
		}
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Debug("session refreshed", "user_id", user.ID)
	setSessionCookies(w, h.Sessions, sess, h.CookieSecure)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
