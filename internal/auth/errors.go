package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailNotVerified   = errors.New("auth: email not verified")
	ErrBanned             = errors.New("auth: user is banned")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrNoSession          = errors.New("auth: no active session")
	ErrForbidden          = errors.New("auth: insufficient role")
	ErrOAuthState         = errors.New("auth: oauth state mismatch")
	ErrProviderDisabled   = errors.New("auth: provider is not configured")
	ErrWeakPassword       = errors.New("auth: password must be 8 to 128 characters")
)
