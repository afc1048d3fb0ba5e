package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/mail"
	"github.com/chatblast/chatblast/internal/auth/metrics"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/pkg/cryptox"
	"github.com/chatblast/chatblast/pkg/idx"
)

// DefaultCodeTTL is how long an issued verification code stays redeemable.
const DefaultCodeTTL = 15 * time.Minute

// VerificationService issues and consumes one-shot, time-bound codes proving
// out-of-band actions such as email ownership.
type VerificationService struct {
	Store  store.Store
	Mailer mail.Mailer

	// BaseURL is the public origin confirmation links are built on.
	BaseURL string
	CodeTTL time.Duration // 0 means DefaultCodeTTL
}

// Issue generates and persists a code bound to a subject and purpose.
// Multiple outstanding codes per subject/purpose are allowed; the consumer
// only honours one of them.
func (s *VerificationService) Issue(
	ctx context.Context,
	subjectID string,
	purpose domain.VerificationPurpose,
) (domain.VerificationCode, error) {
	code, err := cryptox.GenerateToken(domain.VerificationCodeLength)
	if err != nil {
		return domain.VerificationCode{}, err
	}

	now := time.Now().UTC()
	vc := domain.VerificationCode{
		ID:        idx.New().String(),
		SubjectID: subjectID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL()),
		CreatedAt: now,
	}
	if err := s.Store.VerificationCodes().CreateVerificationCode(ctx, vc); err != nil {
		return domain.VerificationCode{}, err
	}

	metrics.VerificationCodesIssuedTotal.Inc()
	return vc, nil
}

// IssueEmailConfirmation issues an EMAIL_CONFIRM code for the user and hands
// the confirmation link to the mail collaborator.
func (s *VerificationService) IssueEmailConfirmation(ctx context.Context, user domain.User) (domain.VerificationCode, error) {
	vc, err := s.Issue(ctx, user.ID, domain.PurposeEmailConfirm)
	if err != nil {
		return domain.VerificationCode{}, err
	}

	confirmation := domain.EmailConfirmation{
		RecipientEmail:  user.Email,
		ConfirmationURL: s.BaseURL + "/verification/email?code=" + url.QueryEscape(vc.Code),
	}
	if err := s.Mailer.SendEmailConfirmation(ctx, confirmation); err != nil {
		return domain.VerificationCode{}, err
	}
	return vc, nil
}

// Consume redeems a code. The store deletes the row atomically with the
// lookup, so a code works exactly once; absent and expired are
// indistinguishable to the caller.
func (s *VerificationService) Consume(
	ctx context.Context,
	subjectID string,
	purpose domain.VerificationPurpose,
	code string,
) error {
	if code == "" {
		return ErrCodeInvalid
	}

	err := s.Store.VerificationCodes().ConsumeVerificationCode(
		ctx, subjectID, purpose, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultRejected).Inc()
			return ErrCodeInvalid
		}
		metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

// ConfirmEmail redeems an EMAIL_CONFIRM code and flips the user's confirmed
// flag in the same transaction, so the flag never flips on a replayed code.
func (s *VerificationService) ConfirmEmail(ctx context.Context, userID, code string) error {
	if code == "" {
		return ErrCodeInvalid
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.VerificationCodes().ConsumeVerificationCode(
			ctx, userID, domain.PurposeEmailConfirm, code, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Users().SetConfirmed(ctx, userID, true)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultRejected).Inc()
			return ErrCodeInvalid
		}
		metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	metrics.VerificationCodesConsumedTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func (s *VerificationService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}
