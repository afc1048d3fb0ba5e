package http

import (
	"net/http"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/service"
)

// Cookie names shared with the web client.
const (
	accessTokenCookie  = "token"
	refreshTokenCookie = "refresh_token"
)

// setSessionCookies writes both token cookies for a freshly activated
// session. The refresh cookie outlives the access cookie client-side only;
// server-side both die with the session.
func setSessionCookies(w http.ResponseWriter, sessions *service.SessionService, sess domain.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    *sess.Token,
		Path:     "/",
		Expires:  sessions.AccessTokenExpiry(sess),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    sess.RefreshToken,
		Path:     "/",
		Expires:  sessions.RefreshCookieExpiry(sess),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	clearCookie(w, accessTokenCookie, secure)
	clearCookie(w, refreshTokenCookie, secure)
}
