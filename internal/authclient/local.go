package authclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/pkg/result"
)

var _ Client = (*Local)(nil)

// Local calls an in-process auth.Service.
type Local struct {
	svc *auth.Service
}

func NewLocal(svc *auth.Service) *Local {
	return &Local{svc: svc}
}

func (l *Local) GetSession(ctx context.Context, r *http.Request) result.Result[*auth.SessionData] {
	token := l.svc.TokenFromRequest(r)
	return result.TryCatch(ctx, func(ctx context.Context) (*auth.SessionData, error) {
		return l.svc.GetSession(ctx, token)
	})
}

func (l *Local) VerifyEmail(ctx context.Context, token string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		if _, err := l.svc.VerifyEmail(ctx, token); err != nil {
			return false, rejectOn(err, auth.ErrInvalidToken)
		}
		return true, nil
	})
}

func (l *Local) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) result.Result[bool] {
	token := l.svc.TokenFromRequest(r)
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		l.svc.ClearSessionCookie(w)
		if err := l.svc.SignOut(ctx, token); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (l *Local) SendResetPassword(ctx context.Context, email, redirectTo string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		return true, l.svc.ForgetPassword(ctx, email, redirectTo)
	})
}

func (l *Local) SendVerificationEmail(ctx context.Context, email, callbackURL string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		return true, l.svc.SendVerificationEmail(ctx, email, callbackURL)
	})
}

// rejectOn tags err with ErrRejected when it matches one of targets.
func rejectOn(err error, targets ...error) error {
	for _, t := range targets {
		if errors.Is(err, t) {
			return errors.Join(ErrRejected, err)
		}
	}
	return err
}
