package domain

import (
	"slices"
	"time"
)

// Opaque token lengths in characters.
const (
	AccessTokenLength  = 30
	RefreshTokenLength = 40
)

// Session is the single durable session record a user may hold.
// Invariant: Token is non-nil if and only if Active is true.
type Session struct {
	ID             string
	UserID         string // unique across all sessions
	Token          *string
	RefreshToken   string
	IPs            []string // every address the session was activated from
	Active         bool
	LastActivation time.Time
}

// HasIP reports whether ip is already in the session's address history.
func (s *Session) HasIP(ip string) bool {
	return slices.Contains(s.IPs, ip)
}

// ExpiredAt reports whether the session's last activation is older than ttl.
func (s *Session) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivation) > ttl
}
