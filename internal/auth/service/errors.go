package service

import "errors"

// Sentinel errors returned by the auth services. The HTTP layer matches them
// with errors.Is and maps them to status codes; none of them leak whether an
// email exists or whether a code existed versus expired.
var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrInvalidPassword      = errors.New("invalid_password")
	ErrEmailTaken           = errors.New("email_taken")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrAccountNotConfirmed  = errors.New("account_not_confirmed")
	ErrAlreadyAuthenticated = errors.New("already_authenticated")
	ErrInvalidRefreshToken  = errors.New("invalid_refresh_token")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrCodeInvalid          = errors.New("code_not_found_or_expired")
)
