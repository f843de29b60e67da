// Package authclient is the only way pages and the API reach the auth
// service. Every call returns a result.Result so callers branch on
// success or failure instead of catching errors mid-render.
package authclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/pkg/result"
)

var (
	// ErrRejected marks a well-formed request the auth service refused,
	// such as an expired verification token.
	ErrRejected = errors.New("authclient: request rejected")

	// ErrUnavailable marks a transport failure or a 5xx answer.
	ErrUnavailable = errors.New("authclient: auth service unavailable")
)

// Client is the adapter contract.
type Client interface {
	// GetSession resolves the caller of r. Anonymous callers succeed with nil.
	GetSession(ctx context.Context, r *http.Request) result.Result[*auth.SessionData]

	VerifyEmail(ctx context.Context, token string) result.Result[bool]

	// SignOut ends the caller's session and clears its cookie on w.
	SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) result.Result[bool]

	SendResetPassword(ctx context.Context, email, redirectTo string) result.Result[bool]
	SendVerificationEmail(ctx context.Context, email, callbackURL string) result.Result[bool]
}

// IsRejected reports whether a failure came from the auth service refusing
// the request rather than from a fault.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
