package gate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/gate"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/htmx"
	"github.com/dmitrymomot/upresume/pkg/result"
	"github.com/dmitrymomot/upresume/pkg/session"
)

var errBackend = errors.New("auth backend down")

// fakeClient answers GetSession with get; the other calls succeed.
type fakeClient struct {
	mu    sync.Mutex
	calls int
	get   func(ctx context.Context) (*auth.SessionData, error)
}

func (f *fakeClient) GetSession(ctx context.Context, _ *http.Request) result.Result[*auth.SessionData] {
	f.mu.Lock()
	f.calls++
	get := f.get
	f.mu.Unlock()
	return result.TryCatch(ctx, get)
}

func (f *fakeClient) setGet(get func(ctx context.Context) (*auth.SessionData, error)) {
	f.mu.Lock()
	f.get = get
	f.mu.Unlock()
}

func (f *fakeClient) VerifyEmail(context.Context, string) result.Result[bool] {
	return result.Success(true)
}

func (f *fakeClient) SignOut(context.Context, http.ResponseWriter, *http.Request) result.Result[bool] {
	return result.Success(true)
}

func (f *fakeClient) SendResetPassword(context.Context, string, string) result.Result[bool] {
	return result.Success(true)
}

func (f *fakeClient) SendVerificationEmail(context.Context, string, string) result.Result[bool] {
	return result.Success(true)
}

func signedIn(email string) func(context.Context) (*auth.SessionData, error) {
	return func(context.Context) (*auth.SessionData, error) {
		return &auth.SessionData{
			User:    &repository.User{ID: "u-" + email, Email: email},
			Session: session.New("s-1", "u-"+email, "tok", time.Hour),
		}, nil
	}
}

func anonymous(context.Context) (*auth.SessionData, error) { return nil, nil }

func failing(context.Context) (*auth.SessionData, error) { return nil, errBackend }

// blocking never resolves on its own.
func blocking(ctx context.Context) (*auth.SessionData, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// navRecorder counts navigations.
type navRecorder struct {
	mu      sync.Mutex
	targets []string
}

func (n *navRecorder) navigator() gate.Navigator {
	return gate.NavigatorFunc(func(c upresume.Context, to string) error {
		n.mu.Lock()
		n.targets = append(n.targets, to)
		n.mu.Unlock()
		return c.Redirect(http.StatusSeeOther, to)
	})
}

func (n *navRecorder) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

type routes func(r upresume.Router)

func (fn routes) Routes(r upresume.Router) { fn(r) }

// newApp guards /dashboard with Protect and / with RedirectIfAuthenticated.
func newApp(g *gate.Gate, dashboard upresume.HandlerFunc) *upresume.App {
	return upresume.New(upresume.WithHandlers(routes(func(r upresume.Router) {
		r.GET("/", func(c upresume.Context) error {
			return c.String(http.StatusOK, "landing")
		}, g.RedirectIfAuthenticated("/dashboard"))

		r.Group(func(r upresume.Router) {
			r.Use(g.Protect())
			r.GET("/dashboard", dashboard)
		})
	})))
}

func serve(app *upresume.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func helloUser(c upresume.Context) error {
	return c.String(http.StatusOK, "hello "+gate.UserFrom(c).Email)
}

func TestProtect_Authenticated(t *testing.T) {
	t.Parallel()

	client := &fakeClient{get: signedIn("ada@example.com")}
	nav := &navRecorder{}
	g := gate.New(client, gate.WithNavigator(nav.navigator()))

	var sess *session.Session
	rec := serve(newApp(g, func(c upresume.Context) error {
		sess = gate.SessionFrom(c)
		require.NotNil(t, gate.ProviderFrom(c))
		return helloUser(c)
	}), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello ada@example.com", rec.Body.String())
	require.Equal(t, "s-1", sess.ID)
	require.Empty(t, nav.all())
}

func TestProtect_RedirectsOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		get  func(context.Context) (*auth.SessionData, error)
	}{
		{"anonymous", anonymous},
		{"errored", failing},
		{"nil user", func(context.Context) (*auth.SessionData, error) {
			return &auth.SessionData{}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{get: tt.get}
			nav := &navRecorder{}
			g := gate.New(client, gate.WithNavigator(nav.navigator()))

			var rendered bool
			rec := serve(newApp(g, func(c upresume.Context) error {
				rendered = true
				return nil
			}), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			require.False(t, rendered)
			require.Equal(t, []string{"/login"}, nav.all())
			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.Equal(t, "/login", rec.Header().Get("Location"))
		})
	}
}

func TestProtect_LoadingRendersPlaceholder(t *testing.T) {
	t.Parallel()

	client := &fakeClient{get: blocking}
	nav := &navRecorder{}
	g := gate.New(client,
		gate.WithNavigator(nav.navigator()),
		gate.WithWait(20*time.Millisecond),
	)

	var rendered bool
	rec := serve(newApp(g, func(c upresume.Context) error {
		rendered = true
		return nil
	}), httptest.NewRequest(http.MethodGet, "/dashboard?tab=1", nil))

	require.False(t, rendered)
	require.Empty(t, nav.all())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `hx-get="/dashboard?tab=1"`)
}

func TestProtect_CustomPlaceholderAndLoginPath(t *testing.T) {
	t.Parallel()

	client := &fakeClient{get: blocking}
	g := gate.New(client,
		gate.WithWait(10*time.Millisecond),
		gate.WithPlaceholder(func(c upresume.Context) error {
			return c.String(http.StatusAccepted, "wait")
		}),
	)
	rec := serve(newApp(g, helloUser), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	client = &fakeClient{get: anonymous}
	g = gate.New(client, gate.WithLoginPath("/signin"))
	rec = serve(newApp(g, helloUser), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestHTMXNavigator(t *testing.T) {
	t.Parallel()

	g := gate.New(&fakeClient{get: anonymous})
	app := newApp(g, helloUser)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	rec = serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(htmx.HeaderHXLocation))
	require.Empty(t, rec.Header().Get("Location"))
}

func TestRedirectIfAuthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		get      func(context.Context) (*auth.SessionData, error)
		wantCode int
		wantNav  []string
	}{
		{"signed in", signedIn("ada@example.com"), http.StatusSeeOther, []string{"/dashboard"}},
		{"anonymous", anonymous, http.StatusOK, nil},
		{"check failed", failing, http.StatusOK, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nav := &navRecorder{}
			g := gate.New(&fakeClient{get: tt.get}, gate.WithNavigator(nav.navigator()))
			rec := serve(newApp(g, helloUser), httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, tt.wantNav, nav.all())
			if tt.wantCode == http.StatusOK {
				require.Equal(t, "landing", rec.Body.String())
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	client := &fakeClient{get: signedIn("old@example.com")}
	g := gate.New(client)

	rec := serve(newApp(g, func(c upresume.Context) error {
		client.setGet(signedIn("new@example.com"))
		u := g.Refresh(c)
		require.Equal(t, "new@example.com", u.Email)
		return helloUser(c)
	}), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, "hello new@example.com", rec.Body.String())
	client.mu.Lock()
	defer client.mu.Unlock()
	require.Equal(t, 2, client.calls)
}

func TestRefresh_KeepsUserOnFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{get: signedIn("ada@example.com")}
	g := gate.New(client)

	rec := serve(newApp(g, func(c upresume.Context) error {
		client.setGet(failing)
		require.Equal(t, "ada@example.com", g.Refresh(c).Email)
		return helloUser(c)
	}), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, "hello ada@example.com", rec.Body.String())
}

func TestAccessorsOutsideGate(t *testing.T) {
	t.Parallel()

	g := gate.New(&fakeClient{get: anonymous})
	app := upresume.New(upresume.WithHandlers(routes(func(r upresume.Router) {
		r.GET("/open", func(c upresume.Context) error {
			require.Nil(t, gate.UserFrom(c))
			require.Nil(t, gate.SessionFrom(c))
			require.Nil(t, gate.ProviderFrom(c))
			require.Nil(t, g.Refresh(c))
			return c.NoContent(http.StatusNoContent)
		})
	})))
	rec := serve(app, httptest.NewRequest(http.MethodGet, "/open", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
