package store

import (
	"context"
	"errors"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports that a guarded write lost a race: the row changed
	// since the caller read it. Callers re-read and retry.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. The durable store is the single source of truth for session
// state; nothing is cached in memory.
type Store interface {
	Users() Users
	Sessions() Sessions
	VerificationCodes() VerificationCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the normalized email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by the normalized (lowercase) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// SetConfirmed flips the confirmed flag.
	SetConfirmed(ctx context.Context, userID string, confirmed bool) error

	// UpdatePasswordHash sets the password_hash column.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type Sessions interface {
	// CreateSession inserts a new session row. Returns ErrAlreadyExists when
	// the user already has one; the unique index on user_id is the backstop
	// against duplicate rows under concurrent first logins.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByUserID returns the user's session regardless of state.
	GetSessionByUserID(ctx context.Context, userID string) (domain.Session, error)

	// GetActiveSessionByToken resolves an access token; only active rows match.
	GetActiveSessionByToken(ctx context.Context, token string) (domain.Session, error)

	// GetActiveSessionByRefreshToken resolves a refresh token; only active
	// rows match, so a swept-expired session is unreachable here.
	GetActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (domain.Session, error)

	// UpdateSessionGuarded writes the full token state of s, but only if the
	// row still carries prevRefreshToken. Returns ErrConflict when another
	// writer rotated the session first.
	UpdateSessionGuarded(ctx context.Context, s domain.Session, prevRefreshToken string) error

	// DeactivateSession clears the access token and sets active=false,
	// keeping the refresh token and IP history for audit.
	DeactivateSession(ctx context.Context, sessionID string) error

	// DeactivateExpiredSessions deactivates every active session whose last
	// activation is before cutoff, clearing tokens in the same statement.
	// Returns the number of sessions swept.
	DeactivateExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteSession removes the row entirely. Administrative purge only;
	// normal flows deactivate instead.
	DeleteSession(ctx context.Context, sessionID string) error
}

type VerificationCodes interface {
	// CreateVerificationCode stores a freshly issued code. Multiple
	// outstanding codes per subject and purpose are allowed.
	CreateVerificationCode(ctx context.Context, vc domain.VerificationCode) error

	// ConsumeVerificationCode deletes a matching, non-expired code in a
	// single statement so a code can never be redeemed twice. Returns
	// ErrNotFound when nothing matched, without distinguishing absent from
	// expired.
	ConsumeVerificationCode(ctx context.Context, subjectID string, purpose domain.VerificationPurpose, code string, now time.Time) error

	// DeleteExpiredVerificationCodes is housekeeping for stale rows.
	DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error)
}
