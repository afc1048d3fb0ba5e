// Package mail is the outbound port to the mail-delivery collaborator.
// The auth core hands over a recipient and a confirmation URL; formatting and
// transport live outside this service.
package mail

import (
	"context"
	"log/slog"

	"github.com/chatblast/chatblast/internal/auth/domain"
)

// Mailer delivers account-confirmation mail.
type Mailer interface {
	SendEmailConfirmation(ctx context.Context, c domain.EmailConfirmation) error
}

// LogMailer logs confirmations instead of delivering them. Used in dev and as
// the default until a real delivery collaborator is wired in.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendEmailConfirmation(ctx context.Context, c domain.EmailConfirmation) error {
	m.Logger.Info("email confirmation issued",
		"recipient", c.RecipientEmail,
		"url", c.ConfirmationURL,
	)
	return nil
}
