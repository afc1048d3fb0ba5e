package sqlite

import (
	"context"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
)

type verificationCodesRepo struct {
	db dbtx
}

func (r *verificationCodesRepo) CreateVerificationCode(ctx context.Context, vc domain.VerificationCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_codes (id, subject_id, purpose, code, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		vc.ID, vc.SubjectID, string(vc.Purpose), vc.Code, toUnix(vc.ExpiresAt), toUnix(vc.CreatedAt),
	)
	return mapUnique(err)
}

// ConsumeVerificationCode deletes the matching non-expired row in one
// statement; the delete is the lookup, so a code can never be redeemed twice.
func (r *verificationCodesRepo) ConsumeVerificationCode(
	ctx context.Context,
	subjectID string,
	purpose domain.VerificationPurpose,
	code string,
	now time.Time,
) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes
		 WHERE subject_id = ? AND purpose = ? AND code = ? AND expires_at > ?`,
		subjectID, string(purpose), code, toUnix(now),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *verificationCodesRepo) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE expires_at <= ?`, toUnix(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
