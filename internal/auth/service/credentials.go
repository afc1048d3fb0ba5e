package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/pkg/cryptox"
	"github.com/chatblast/chatblast/pkg/idx"
)

// Password policy bounds.
const (
	PasswordMinLength = 6
	PasswordMaxLength = 32
)

// CredentialService creates users and verifies passwords. Hashing happens
// here, before the write reaches the store, never as a storage side effect.
type CredentialService struct {
	Store      store.Store
	BcryptCost int // 0 means cryptox.DefaultCost
}

// Register validates the email and password, hashes the password, and
// persists a new unconfirmed user with the given role.
func (s *CredentialService) Register(
	ctx context.Context,
	email, password string,
	role domain.RoleID,
) (domain.User, error) {
	email = NormalizeEmail(email)
	if !validEmail(email) {
		return domain.User{}, ErrInvalidEmail
	}
	if err := ValidatePassword(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password, s.BcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		Confirmed:    false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return u, nil
}

// Verify looks up a user by normalized email and checks the password.
// Unknown email, a user without a password, and a hash mismatch all collapse
// into ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if u.PasswordHash == nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, *u.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword validates the new password against policy and re-hashes it.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// NormalizeEmail lowercases and trims an address; the store only ever sees
// normalized emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the registration policy: 6 to 32 characters and
// at least two of the lowercase, uppercase, and digit character classes.
// Length counts characters, not bytes, so multibyte passwords are measured
// the way the user typed them.
func ValidatePassword(password string) error {
	if n := utf8.RuneCountInString(password); n < PasswordMinLength || n > PasswordMaxLength {
		return ErrInvalidPassword
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	classes := 0
	for _, ok := range []bool{lower, upper, digit} {
		if ok {
			classes++
		}
	}
	if classes < 2 {
		return ErrInvalidPassword
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	_, host, ok := strings.Cut(email, "@")
	return ok && strings.Contains(host, ".")
}
