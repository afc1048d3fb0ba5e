package service

import (
	"context"
	"errors"

	"github.com/chatblast/chatblast/internal/auth/domain"
	"github.com/chatblast/chatblast/internal/auth/store"
)

// UserService serves the administrative user surface: listing accounts,
// looking them up, creating accounts with a chosen role, and changing
// passwords on behalf of a user. Access control stays with the caller; this
// service only performs the operations.
type UserService struct {
	Store       store.Store
	Credentials *CredentialService
}

// List returns every account, ordered by creation time.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Get looks up a single account by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Create registers an account with the given role. Unlike self-registration
// the role is caller-chosen, so it is validated against the defined set.
// The account still starts unconfirmed.
func (s *UserService) Create(ctx context.Context, email, password string, role domain.RoleID) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRequest
	}
	return s.Credentials.Register(ctx, email, password, role)
}

// ChangePassword re-hashes the account's password after policy validation.
func (s *UserService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	err := s.Credentials.ChangePassword(ctx, userID, newPassword)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
