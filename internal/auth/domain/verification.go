package domain

import "time"

// VerificationPurpose scopes a code to the out-of-band action it proves.
type VerificationPurpose string

const PurposeEmailConfirm VerificationPurpose = "email_confirm"

// VerificationCodeLength is the character length of issued codes.
const VerificationCodeLength = 25

// VerificationCode is a one-shot, time-bound proof of an out-of-band action.
// Consumed rows are deleted; expired rows are ignored by lookups and swept
// lazily.
type VerificationCode struct {
	ID        string
	SubjectID string
	Purpose   VerificationPurpose
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// EmailConfirmation is the value handed to the mail collaborator when a
// confirmation code is issued. The core never formats or sends mail itself.
type EmailConfirmation struct {
	RecipientEmail  string
	ConfirmationURL string
}
