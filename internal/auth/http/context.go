package http

import (
	"context"

	"github.com/chatblast/chatblast/internal/auth/domain"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeySession
)

// UserFromContext returns the authenticated user set by SessionAuth.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(domain.User)
	return u, ok
}

// SessionFromContext returns the authenticated session set by SessionAuth.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(domain.Session)
	return s, ok
}

func withIdentity(ctx context.Context, u domain.User, s domain.Session) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, u)
	return context.WithValue(ctx, ctxKeySession, s)
}
