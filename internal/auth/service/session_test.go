package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatblast/chatblast/internal/auth/domain"
)

func TestLoginCreatesSession(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)

	assert.True(t, sess.Active)
	require.NotNil(t, sess.Token)
	assert.Len(t, *sess.Token, domain.AccessTokenLength)
	assert.Len(t, sess.RefreshToken, domain.RefreshTokenLength)
	assert.Equal(t, []string{"10.0.0.1"}, sess.IPs)
	assert.Equal(t, u.ID, sess.UserID)

	got, resolved, err := auth.Resolve(ctx, *sess.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, sess.ID, resolved.ID)
}

func TestLoginRotatesExistingSession(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))
	registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, first, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	_, second, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)

	// The row is rotated in place; there is never a second session row.
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, *first.Token, *second.Token)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The previous login's tokens die the instant the new one lands.
	_, _, err = auth.Resolve(ctx, *first.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = auth.Refresh(ctx, first.RefreshToken, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, _, err = auth.Resolve(ctx, *second.Token)
	assert.NoError(t, err)
}

func TestLoginRecordsDistinctIPs(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))
	registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, _, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, sess.IPs)

	// A repeat address is not duplicated.
	_, sess, err = auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, sess.IPs)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newTestAuth(t, st)
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, sess))

	_, _, err = auth.Resolve(ctx, *sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// A disabled session cannot be refreshed back to life, only re-logged-in.
	_, _, err = auth.Refresh(ctx, sess.RefreshToken, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The row stays behind for audit, disabled and with its token cleared.
	row, err := st.Sessions().GetSessionByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, row.Active)
	assert.Nil(t, row.Token)
	assert.Equal(t, sess.RefreshToken, row.RefreshToken)

	// Logging out twice is harmless.
	assert.NoError(t, auth.Logout(ctx, sess))
}

func TestDisableUnknownSessionIsIdempotent(t *testing.T) {
	auth := newTestAuth(t, newTestStore(t))
	assert.NoError(t, auth.Sessions.Disable(context.Background(), "no-such-session"))
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)

	got, rotated, err := auth.Refresh(ctx, sess.RefreshToken, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, sess.ID, rotated.ID)
	assert.NotEqual(t, *sess.Token, *rotated.Token)
	assert.NotEqual(t, sess.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, rotated.IPs)

	// Refresh tokens are single-use.
	_, _, err = auth.Refresh(ctx, sess.RefreshToken, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, _, err = auth.Refresh(ctx, rotated.RefreshToken, "10.0.0.1")
	assert.NoError(t, err)
}

func TestRefreshRejectsEmptyAndUnknownTokens(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))

	_, _, err := auth.Refresh(ctx, "", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, _, err = auth.Refresh(ctx, "never-issued-token", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestResolveUnconfirmedUser(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))

	u, err := auth.Register(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)

	// The session layer does not gate on confirmation; the verification
	// endpoints need an authenticated-but-unconfirmed caller.
	sess, err := auth.Sessions.Login(ctx, u.ID, "10.0.0.1")
	require.NoError(t, err)

	got, resolved, err := auth.Resolve(ctx, *sess.Token)
	assert.ErrorIs(t, err, ErrAccountNotConfirmed)
	assert.Equal(t, u.ID, got.ID, "the pair is still returned alongside the error")
	assert.Equal(t, sess.ID, resolved.ID)
}

func TestResolveExpiredSession(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(t, newTestStore(t))
	registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	auth.Sessions.SessionTTL = time.Nanosecond
	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, _, err = auth.Resolve(ctx, *sess.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestConcurrentLoginsKeepSingleSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newTestAuth(t, st)
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	const writers = 4
	var wg sync.WaitGroup
	results := make([]domain.Session, writers)
	errs := make([]error, writers)

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i], errs[i] = auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
		}()
	}
	wg.Wait()

	var won int
	for i := range writers {
		if errs[i] == nil {
			won++
		}
	}
	require.Positive(t, won, "at least one login must land")

	// Whatever the interleaving, the user ends up with exactly one active
	// session whose state matches one of the successful logins.
	row, err := st.Sessions().GetSessionByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, row.Active)
	require.NotNil(t, row.Token)

	var matched bool
	for i := range writers {
		if errs[i] == nil && results[i].RefreshToken == row.RefreshToken {
			matched = true
		}
	}
	assert.True(t, matched, "stored tokens belong to one of the winners")
}

func TestCookieExpiries(t *testing.T) {
	sessions := &SessionService{}
	sess := domain.Session{LastActivation: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	assert.Equal(t, sess.LastActivation.Add(DefaultSessionTTL), sessions.AccessTokenExpiry(sess))
	assert.Equal(t, sess.LastActivation.Add(DefaultRefreshCookieTTL), sessions.RefreshCookieExpiry(sess))
}

func TestPurgeRemovesSessionEntirely(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newTestAuth(t, st)
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	sess, err := auth.Sessions.Login(ctx, u.ID, "10.0.0.1")
	require.NoError(t, err)

	require.NoError(t, auth.Sessions.Purge(ctx, sess.ID))

	_, err = st.Sessions().GetSessionByUserID(ctx, u.ID)
	assert.Error(t, err, "the row is gone, not just disabled")
	_, _, err = auth.Refresh(ctx, sess.RefreshToken, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRequirePermissions(t *testing.T) {
	auth := newTestAuth(t, newTestStore(t))

	admin := &domain.User{Role: domain.RoleAdmin}
	user := &domain.User{Role: domain.RoleUser}

	assert.NoError(t, auth.RequirePermissions(admin, domain.PermissionEditUsers))
	assert.NoError(t, auth.RequirePermissions(user))
	assert.ErrorIs(t, auth.RequirePermissions(user, domain.PermissionEditUsers), ErrUnauthorized)
	assert.ErrorIs(t, auth.RequirePermissions(nil, domain.PermissionViewUsers), ErrUnauthorized)
}
