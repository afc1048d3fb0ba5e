package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/store"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, token, refresh_token, ips, active, last_activation`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token, refresh_token, ips, active, last_activation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Token, s.RefreshToken, joinIPs(s.IPs), s.Active, toUnix(s.LastActivation),
	)
	return mapUnique(err)
}

func (r *sessionsRepo) GetSessionByUserID(ctx context.Context, userID string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ?`, userID)
	return scanSession(row)
}

func (r *sessionsRepo) GetActiveSessionByToken(ctx context.Context, token string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = ? AND active = TRUE`, token)
	return scanSession(row)
}

func (r *sessionsRepo) GetActiveSessionByRefreshToken(ctx context.Context, refreshToken string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = ? AND active = TRUE`, refreshToken)
	return scanSession(row)
}

func (r *sessionsRepo) UpdateSessionGuarded(ctx context.Context, s domain.Session, prevRefreshToken string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET token = ?, refresh_token = ?, ips = ?, active = ?, last_activation = ?
		 WHERE id = ? AND refresh_token = ?`,
		s.Token, s.RefreshToken, joinIPs(s.IPs), s.Active, toUnix(s.LastActivation),
		s.ID, prevRefreshToken,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *sessionsRepo) DeactivateSession(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = FALSE, token = NULL WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionsRepo) DeactivateExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active = FALSE, token = NULL
		 WHERE active = TRUE AND last_activation < ?`, toUnix(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var (
		s              domain.Session
		token          sql.NullString
		ips            string
		lastActivation int64
	)
	if err := row.Scan(&s.ID, &s.UserID, &token, &s.RefreshToken, &ips, &s.Active, &lastActivation); err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	if token.Valid {
		s.Token = &token.String
	}
	s.IPs = splitIPs(ips)
	s.LastActivation = fromUnix(lastActivation)
	return s, nil
}
