package http

import (
	"errors"
	"net/http"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/pkg/httpx"
)

// SessionAuth authenticates the request from the session cookie and puts the
// resolved user and session on the context. With allowUnconfirmed set, an
// account that has not confirmed its email still passes; the verification
// endpoints need exactly that.
func SessionAuth(auth *service.AuthService, allowUnconfirmed bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(accessTokenCookie)
			if err != nil {
				writeServiceError(w, r, service.ErrUnauthenticated)
				return
			}

			user, sess, err := auth.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if !(allowUnconfirmed && errors.Is(err, service.ErrAccountNotConfirmed)) {
					writeServiceError(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user, sess)))
		})
	}
}

// RequirePermissions gates a route on the authenticated user's role. Must run
// after SessionAuth.
func RequirePermissions(auth *service.AuthService, required ...domain.Permission) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeServiceError(w, r, service.ErrUnauthenticated)
				return
			}
			if err := auth.RequirePermissions(&user, required...); err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
