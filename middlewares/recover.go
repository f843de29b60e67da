package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/upresume/internal"
)

// DefaultStackSize caps the captured stack trace in bytes.
const DefaultStackSize = 4096

type recoverConfig struct {
	stackSize  int
	printStack bool
}

// RecoverOption configures the Recover middleware.
type RecoverOption func(*recoverConfig)

func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack drops the stack from logs and from the PanicError.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.printStack = false
	}
}

// Recover turns a panic into a *PanicError. The error handler then answers 500.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{
		stackSize:  DefaultStackSize,
		printStack: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				attrs := []any{"panic", r, "path", c.Request().URL.Path}
				if cfg.printStack {
					buf := make([]byte, cfg.stackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				c.LogError("panic recovered", attrs...)
				err = pe
			}()

			return next(c)
		}
	}
}
