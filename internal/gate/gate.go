// Package gate guards the pages that require a signed-in user.
//
// Protect resolves the caller through a per-request sessionctx.Provider and
// waits a bounded time for it. A provider that is still loading renders a
// placeholder which re-polls the page; a resolved provider either renders
// the page or navigates to login exactly once.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/authclient"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/internal/sessionctx"
	"github.com/dmitrymomot/upresume/internal/view"
	"github.com/dmitrymomot/upresume/pkg/htmx"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/result"
	"github.com/dmitrymomot/upresume/pkg/session"
)

const (
	// DefaultWait bounds how long Protect waits for the session to resolve.
	DefaultWait = 3 * time.Second

	DefaultLoginPath = "/login"
)

// Navigator sends the client elsewhere.
type Navigator interface {
	Navigate(c upresume.Context, to string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(c upresume.Context, to string) error

func (f NavigatorFunc) Navigate(c upresume.Context, to string) error {
	return f(c, to)
}

// HTMXNavigator uses HX-Location for htmx requests and 303 See Other otherwise.
var HTMXNavigator = NavigatorFunc(func(c upresume.Context, to string) error {
	htmx.Location(c.Response(), c.Request(), to, http.StatusSeeOther)
	return nil
})

type (
	userKey     struct{}
	sessionKey  struct{}
	providerKey struct{}
)

// Gate holds the collaborators shared by every guarded request.
type Gate struct {
	client      authclient.Client
	nav         Navigator
	wait        time.Duration
	loginPath   string
	placeholder upresume.HandlerFunc
	logger      *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

func WithNavigator(n Navigator) Option {
	return func(g *Gate) {
		if n != nil {
			g.nav = n
		}
	}
}

// WithWait sets the resolution budget. Non-positive values keep DefaultWait.
func WithWait(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.wait = d
		}
	}
}

func WithLoginPath(p string) Option {
	return func(g *Gate) {
		if p != "" {
			g.loginPath = p
		}
	}
}

// WithPlaceholder replaces the loading page rendered while the session is unresolved.
func WithPlaceholder(h upresume.HandlerFunc) Option {
	return func(g *Gate) {
		if h != nil {
			g.placeholder = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

func New(client authclient.Client, opts ...Option) *Gate {
	g := &Gate{
		client:    client,
		nav:       HTMXNavigator,
		wait:      DefaultWait,
		loginPath: DefaultLoginPath,
		logger:    logger.NewNope(),
	}
	g.placeholder = defaultPlaceholder
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func defaultPlaceholder(c upresume.Context) error {
	return c.Render(http.StatusOK, view.Loading(view.LoadingData{PollURL: c.Request().URL.RequestURI()}))
}

// Protect renders next only for an authenticated caller.
func (g *Gate) Protect() upresume.Middleware {
	return func(next upresume.HandlerFunc) upresume.HandlerFunc {
		return func(c upresume.Context) error {
			req := c.Request()
			p := sessionctx.New(req.Context(), func(ctx context.Context) result.Result[*auth.SessionData] {
				return g.client.GetSession(ctx, req)
			}, sessionctx.WithLogger(g.logger))
			defer p.Close()
			p.Start()

			waitCtx, cancel := context.WithTimeout(req.Context(), g.wait)
			st, _ := p.Wait(waitCtx)
			cancel()

			switch {
			case st.IsLoading:
				return g.placeholder(c)
			case st.Err != nil:
				g.logger.ErrorContext(c, "session check failed",
					logger.Scope("auth:session-check"),
					logger.Error(st.Err),
				)
				return g.nav.Navigate(c, g.loginPath)
			case st.User == nil:
				return g.nav.Navigate(c, g.loginPath)
			}

			c.Set(providerKey{}, p)
			c.Set(userKey{}, st.User)
			c.Set(sessionKey{}, st.Session)
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in callers to `to`. A failed
// session check is logged and the page renders as for an anonymous caller.
func (g *Gate) RedirectIfAuthenticated(to string) upresume.Middleware {
	return func(next upresume.HandlerFunc) upresume.HandlerFunc {
		return func(c upresume.Context) error {
			data, err := g.client.GetSession(c, c.Request()).Unwrap()
			if err != nil {
				g.logger.ErrorContext(c, "session check failed",
					logger.Scope("auth:session-check"),
					logger.Error(err),
				)
				return next(c)
			}
			if data != nil && data.User != nil {
				return g.nav.Navigate(c, to)
			}
			return next(c)
		}
	}
}

// UserFrom returns the user stored by Protect, or nil outside a guarded route.
func UserFrom(c upresume.Context) *repository.User {
	return upresume.ContextValue[*repository.User](c, userKey{})
}

func SessionFrom(c upresume.Context) *session.Session {
	return upresume.ContextValue[*session.Session](c, sessionKey{})
}

// ProviderFrom returns the request's session provider. Handlers call
// Refetch on it after changing the user, then Wait for the new state.
func ProviderFrom(c upresume.Context) *sessionctx.Provider {
	return upresume.ContextValue[*sessionctx.Provider](c, providerKey{})
}

// Refresh refetches the session and stores the resolved user. The stored
// user is left alone when the refetch fails or times out.
func (g *Gate) Refresh(c upresume.Context) *repository.User {
	p := ProviderFrom(c)
	if p == nil {
		return nil
	}
	p.Refetch()

	ctx, cancel := context.WithTimeout(c, g.wait)
	defer cancel()
	st, err := p.Wait(ctx)
	if err != nil || !st.Authenticated() {
		return UserFrom(c)
	}
	c.Set(userKey{}, st.User)
	c.Set(sessionKey{}, st.Session)
	return st.User
}
