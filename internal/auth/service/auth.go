package service

import (
	"context"
	"errors"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/metrics"
	"github.com/chatblast/chatblast/internal/auth/store"
)

// AuthService is the top-level gateway composing credential verification,
// session management, and permission checks into the use cases the HTTP
// layer calls.
type AuthService struct {
	Store       store.Store
	Credentials *CredentialService
	Sessions    *SessionService
}

// Register creates a new unconfirmed user with the default role.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	return s.Credentials.Register(ctx, email, password, domain.RoleUser)
}

// Login verifies credentials, requires a confirmed account, and creates or
// rotates the user's session.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (domain.User, domain.Session, error) {
	user, err := s.Credentials.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return domain.User{}, domain.Session{}, err
	}
	if !user.Confirmed {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return domain.User{}, domain.Session{}, ErrAccountNotConfirmed
	}

	sess, err := s.Sessions.Login(ctx, user.ID, ip)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return domain.User{}, domain.Session{}, err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return user, sess, nil
}

// Logout disables the caller's session.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	return s.Sessions.Disable(ctx, sess.ID)
}

// Refresh rotates the session identified by the refresh token and returns
// the owning user alongside the new session state.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (domain.User, domain.Session, error) {
	sess, err := s.Sessions.Refresh(ctx, refreshToken, ip)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			metrics.RefreshesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		} else {
			metrics.RefreshesTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return domain.User{}, domain.Session{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrInvalidRefreshToken
		}
		return domain.User{}, domain.Session{}, err
	}

	metrics.RefreshesTotal.WithLabelValues(metrics.ResultOK).Inc()
	return user, sess, nil
}

// Resolve maps an access token to its user and session.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.User, domain.Session, error) {
	return s.Sessions.Resolve(ctx, token)
}

// RequirePermissions fails with ErrUnauthorized unless the user's role owns
// every listed permission (or the wildcard).
func (s *AuthService) RequirePermissions(user *domain.User, required ...domain.Permission) error {
	if !domain.HasPermission(user, required...) {
		return ErrUnauthorized
	}
	return nil
}
