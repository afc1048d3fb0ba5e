package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/pkg/cryptox"
	"github.com/chatblast/chatblast/pkg/idx"
)

const (
	// DefaultSessionTTL is the enforced session lifetime ceiling.
	DefaultSessionTTL = 48 * time.Hour

	// DefaultRefreshCookieTTL is the client-visible refresh cookie lifetime.
	// Advisory only: refresh lookups require active=true, and the sweep
	// clears active at DefaultSessionTTL, so the server-side ceiling for
	// both tokens is the session TTL.
	DefaultRefreshCookieTTL = 7 * 24 * time.Hour

	// sessionWriteRetries bounds the fetch-and-retry loop around guarded
	// session writes racing on the same user's row.
	sessionWriteRetries = 3
)

// SessionService owns the per-user session state machine: NONE (no row),
// ACTIVE (token set), DISABLED (row kept, token cleared). The durable store
// is the single source of truth; concurrent writers are serialized by
// guarded updates on the row's refresh token plus the unique index on
// user_id.
type SessionService struct {
	Store store.Store

	SessionTTL       time.Duration // 0 means DefaultSessionTTL
	RefreshCookieTTL time.Duration // 0 means DefaultRefreshCookieTTL
}

// Login creates the user's session row or rotates it in place. A previously
// active session is invalidated in the same write that re-activates the row,
// so only the most recent login holds a working token. The loser of a
// concurrent first-login race retries as a reactivation instead of erroring.
func (s *SessionService) Login(ctx context.Context, userID, ip string) (domain.Session, error) {
	for range sessionWriteRetries {
		sess, err := s.Store.Sessions().GetSessionByUserID(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			fresh, err := s.newSession(userID, ip)
			if err != nil {
				return domain.Session{}, err
			}
			err = s.Store.Sessions().CreateSession(ctx, fresh)
			if err == nil {
				return fresh, nil
			}
			if errors.Is(err, store.ErrAlreadyExists) {
				// Lost the first-login race; the winner's row exists now.
				continue
			}
			return domain.Session{}, err
		}
		if err != nil {
			return domain.Session{}, err
		}

		rotated, err := s.reactivate(sess, ip)
		if err != nil {
			return domain.Session{}, err
		}
		err = s.Store.Sessions().UpdateSessionGuarded(ctx, rotated, sess.RefreshToken)
		if err == nil {
			return rotated, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return domain.Session{}, err
		}
	}
	return domain.Session{}, fmt.Errorf("session login: write conflict persisted after %d attempts", sessionWriteRetries)
}

// Refresh resolves an active session by refresh token and rotates it the same
// way a login does. A disabled or swept session is unreachable here because
// the lookup filters on active=true.
func (s *SessionService) Refresh(ctx context.Context, refreshToken, ip string) (domain.Session, error) {
	if refreshToken == "" {
		return domain.Session{}, ErrInvalidRefreshToken
	}

	for range sessionWriteRetries {
		sess, err := s.Store.Sessions().GetActiveSessionByRefreshToken(ctx, refreshToken)
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidRefreshToken
		}
		if err != nil {
			return domain.Session{}, err
		}

		rotated, err := s.reactivate(sess, ip)
		if err != nil {
			return domain.Session{}, err
		}
		err = s.Store.Sessions().UpdateSessionGuarded(ctx, rotated, sess.RefreshToken)
		if err == nil {
			return rotated, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return domain.Session{}, err
		}
		// Another writer rotated the row; the presented token is stale now,
		// so the retry's lookup decides whether it still resolves.
	}
	return domain.Session{}, ErrInvalidRefreshToken
}

// Disable is an explicit logout: active=false, access token cleared, refresh
// token and IP history retained for audit. A disabled session cannot be
// resurrected by Refresh, only by a fresh Login.
func (s *SessionService) Disable(ctx context.Context, sessionID string) error {
	err := s.Store.Sessions().DeactivateSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil // already gone; logout is idempotent
	}
	return err
}

// Purge removes the session row entirely. Administrative use only; normal
// flows never delete, expiry only deactivates.
func (s *SessionService) Purge(ctx context.Context, sessionID string) error {
	return s.Store.Sessions().DeleteSession(ctx, sessionID)
}

// Resolve maps an access token to its user and session. It fails for a
// missing or inactive token, a missing user, and a session older than the
// TTL (defense in depth between sweeps). An unconfirmed user yields
// ErrAccountNotConfirmed alongside the resolved pair so callers that permit
// unconfirmed accounts (the verification endpoints) can still authenticate.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.User, domain.Session, error) {
	if token == "" {
		return domain.User{}, domain.Session{}, ErrUnauthenticated
	}

	sess, err := s.Store.Sessions().GetActiveSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrUnauthenticated
		}
		return domain.User{}, domain.Session{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrUnauthenticated
		}
		return domain.User{}, domain.Session{}, err
	}

	if sess.ExpiredAt(time.Now().UTC(), s.sessionTTL()) {
		return domain.User{}, domain.Session{}, ErrUnauthenticated
	}
	if !user.Confirmed {
		return user, sess, ErrAccountNotConfirmed
	}
	return user, sess, nil
}

// AccessTokenExpiry is the client-visible expiry for the access token cookie.
func (s *SessionService) AccessTokenExpiry(sess domain.Session) time.Time {
	return sess.LastActivation.Add(s.sessionTTL())
}

// RefreshCookieExpiry is the client-visible expiry for the refresh cookie.
// See DefaultRefreshCookieTTL for why this is advisory.
func (s *SessionService) RefreshCookieExpiry(sess domain.Session) time.Time {
	return sess.LastActivation.Add(s.refreshCookieTTL())
}

func (s *SessionService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *SessionService) refreshCookieTTL() time.Duration {
	if s.RefreshCookieTTL > 0 {
		return s.RefreshCookieTTL
	}
	return DefaultRefreshCookieTTL
}

func (s *SessionService) newSession(userID, ip string) (domain.Session, error) {
	token, refresh, err := newTokenPair()
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:             idx.New().String(),
		UserID:         userID,
		Token:          &token,
		RefreshToken:   refresh,
		IPs:            []string{ip},
		Active:         true,
		LastActivation: time.Now().UTC(),
	}, nil
}

// reactivate produces the rotated state for an existing row: both tokens
// regenerated, activation timestamp reset, ip recorded. The previous token is
// dead the instant this state is written, whether the row was ACTIVE or
// DISABLED before.
func (s *SessionService) reactivate(sess domain.Session, ip string) (domain.Session, error) {
	token, refresh, err := newTokenPair()
	if err != nil {
		return domain.Session{}, err
	}

	sess.Token = &token
	sess.RefreshToken = refresh
	sess.Active = true
	sess.LastActivation = time.Now().UTC()
	if ip != "" && !sess.HasIP(ip) {
		sess.IPs = append(sess.IPs, ip)
	}
	return sess, nil
}

func newTokenPair() (token, refresh string, err error) {
	token, err = cryptox.GenerateToken(domain.AccessTokenLength)
	if err != nil {
		return "", "", err
	}
	refresh, err = cryptox.GenerateToken(domain.RefreshTokenLength)
	if err != nil {
		return "", "", err
	}
	return token, refresh, nil
}
