package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/pkg/cryptox"
)

func TestSweepDeactivatesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newTestAuth(t, st)
	u := registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	token := cryptox.MustGenerateToken(domain.AccessTokenLength)
	stale := domain.Session{
		ID:             "sess-stale",
		UserID:         u.ID,
		Token:          &token,
		RefreshToken:   cryptox.MustGenerateToken(domain.RefreshTokenLength),
		IPs:            []string{"10.0.0.1"},
		Active:         true,
		LastActivation: time.Now().UTC().Add(-3 * time.Hour),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, stale))

	sweep := NewSweepService(st, discardLogger(), DefaultSweepInterval, 2*time.Hour)
	sweep.Sweep(ctx)

	row, err := st.Sessions().GetSessionByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, row.Active)
	assert.Nil(t, row.Token)
	assert.Equal(t, stale.RefreshToken, row.RefreshToken, "refresh token stays on the row")

	// Disabled means unreachable through both token paths.
	_, _, err = auth.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = auth.Refresh(ctx, stale.RefreshToken, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestSweepLeavesFreshSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newTestAuth(t, st)
	registerConfirmed(t, auth, "alice@example.com", "Sup3rSecret")

	_, sess, err := auth.Login(ctx, "alice@example.com", "Sup3rSecret", "10.0.0.1")
	require.NoError(t, err)

	sweep := NewSweepService(st, discardLogger(), DefaultSweepInterval, DefaultSessionTTL)
	sweep.Sweep(ctx)

	_, _, err = auth.Resolve(ctx, *sess.Token)
	assert.NoError(t, err)
}

func TestSweepDeletesExpiredVerificationCodes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	verif := newTestVerification(st, &captureMailer{})

	live, err := verif.Issue(ctx, "user-1", domain.PurposeEmailConfirm)
	require.NoError(t, err)

	expired := domain.VerificationCode{
		ID:        "vc-old",
		SubjectID: "user-1",
		Purpose:   domain.PurposeEmailConfirm,
		Code:      "stale-code",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, st.VerificationCodes().CreateVerificationCode(ctx, expired))

	sweep := NewSweepService(st, discardLogger(), DefaultSweepInterval, DefaultSessionTTL)
	sweep.Sweep(ctx)

	assert.NoError(t, verif.Consume(ctx, "user-1", domain.PurposeEmailConfirm, live.Code),
		"unexpired codes survive the sweep")
}

func TestSweepServiceStartStop(t *testing.T) {
	st := newTestStore(t)

	sweep := NewSweepService(st, discardLogger(), 10*time.Millisecond, DefaultSessionTTL)
	sweep.Start()
	time.Sleep(30 * time.Millisecond)
	sweep.Stop()
}
