package oauth

import "errors"

var (
	ErrMissingClientID     = errors.New("oauth: missing client ID")
	ErrMissingClientSecret = errors.New("oauth: missing client secret")
	ErrEmailNotVerified    = errors.New("oauth: email not verified")
	ErrExchangeFailed      = errors.New("oauth: code exchange failed")
	ErrFetchFailed         = errors.New("oauth: failed to fetch user info")
)
