package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/upresume/internal"
)

// DefaultTimeout is used when Timeout gets a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout attaches a deadline to the request context. pgx, go-redis and the
// auth client all honor it. If the deadline passed and nothing was written,
// the handler's result is replaced by a *TimeoutError.
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			parent := c.Context()
			ctx, cancel := context.WithTimeout(parent, d)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			c.SetContext(parent)

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
				c.LogWarn("request timeout", "timeout", d.String())
				return errors.Join(&TimeoutError{Duration: d}, err)
			}
			return err
		}
	}
}
