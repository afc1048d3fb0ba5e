package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/internal/auth/store/drivers/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestAuth(t *testing.T, st store.Store) *AuthService {
	t.Helper()

	creds := &CredentialService{Store: st, BcryptCost: bcrypt.MinCost}
	sessions := &SessionService{Store: st}
	return &AuthService{Store: st, Credentials: creds, Sessions: sessions}
}

func registerConfirmed(t *testing.T, auth *AuthService, email, password string) domain.User {
	t.Helper()

	ctx := context.Background()
	u, err := auth.Register(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, auth.Store.Users().SetConfirmed(ctx, u.ID, true))
	u.Confirmed = true
	return u
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
