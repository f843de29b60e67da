package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/gate"
	"github.com/dmitrymomot/upresume/internal/handlers"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/pkg/cookie"
	"github.com/dmitrymomot/upresume/pkg/result"
	"github.com/dmitrymomot/upresume/pkg/session"
	"github.com/dmitrymomot/upresume/pkg/storage"
)

const testSecret = "handlers-test-secret-0123456789ab"

// fakeClient records calls. Zero-value hooks succeed; GetSession is anonymous.
type fakeClient struct {
	mu sync.Mutex

	session func(ctx context.Context) (*auth.SessionData, error)
	verify  func(token string) (bool, error)
	signOut error
	reset   error

	sessionCalls int
	signOuts     int
	resets       []string
}

func (f *fakeClient) GetSession(ctx context.Context, _ *http.Request) result.Result[*auth.SessionData] {
	f.mu.Lock()
	f.sessionCalls++
	fn := f.session
	f.mu.Unlock()
	if fn == nil {
		return result.Success[*auth.SessionData](nil)
	}
	return result.TryCatch(ctx, fn)
}

func (f *fakeClient) setSession(fn func(ctx context.Context) (*auth.SessionData, error)) {
	f.mu.Lock()
	f.session = fn
	f.mu.Unlock()
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) result.Result[bool] {
	if f.verify == nil {
		return result.Success(true)
	}
	return result.FromPair(f.verify(token))
}

func (f *fakeClient) SignOut(context.Context, http.ResponseWriter, *http.Request) result.Result[bool] {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	if f.signOut != nil {
		return result.Failure[bool](f.signOut)
	}
	return result.Success(true)
}

func (f *fakeClient) SendResetPassword(_ context.Context, email, redirectTo string) result.Result[bool] {
	f.mu.Lock()
	f.resets = append(f.resets, email+" "+redirectTo)
	f.mu.Unlock()
	if f.reset != nil {
		return result.Failure[bool](f.reset)
	}
	return result.Success(true)
}

func (f *fakeClient) SendVerificationEmail(context.Context, string, string) result.Result[bool] {
	return result.Success(true)
}

func (f *fakeClient) counts() (sessions, signOuts int, resets []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionCalls, f.signOuts, append([]string(nil), f.resets...)
}

// signedIn resolves to a user whose image is read from users, so a
// refetch sees avatar updates.
func signedIn(users *fakeUsers) func(context.Context) (*auth.SessionData, error) {
	return func(context.Context) (*auth.SessionData, error) {
		name := "Ada Lovelace"
		u := &repository.User{ID: "user-1", Email: "ada@example.com", Name: &name, EmailVerified: true}
		if users != nil {
			u.Image = users.image("user-1")
		}
		return &auth.SessionData{
			User:    u,
			Session: session.New("sess-1", "user-1", "secret-token", time.Hour),
		}, nil
	}
}

type fakeProfiles struct {
	err      error
	profiles map[string]repository.Profile
}

func (f *fakeProfiles) GetProfileByEmail(_ context.Context, email string) (repository.Profile, error) {
	if f.err != nil {
		return repository.Profile{}, f.err
	}
	p, ok := f.profiles[email]
	if !ok {
		return repository.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	err    error
	images map[string]string
}

func (f *fakeUsers) UpdateUserImage(_ context.Context, id string, image *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.images == nil {
		f.images = map[string]string{}
	}
	f.images[id] = *image
	return nil
}

func (f *fakeUsers) image(id string) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.images[id]; ok {
		return &v
	}
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if _, err := io.ReadAll(r); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[key] = contentType
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) URL(key string) string { return "https://cdn.example.com/" + key }

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	return out
}

type deps struct {
	client   *fakeClient
	profiles *fakeProfiles
	users    *fakeUsers
	store    storage.Storage
}

// newApp wires all three handlers the way cmd/upresume does.
func newApp(t *testing.T, d deps) http.Handler {
	t.Helper()

	if d.client == nil {
		d.client = &fakeClient{}
	}
	if d.profiles == nil {
		d.profiles = &fakeProfiles{}
	}
	if d.users == nil {
		d.users = &fakeUsers{}
	}

	themes, err := theme.New(theme.Config{Secret: testSecret})
	require.NoError(t, err)

	g := gate.New(d.client, gate.WithPlaceholder(handlers.Placeholder(themes)), gate.WithWait(time.Second))
	pages := handlers.NewPages(g, d.client, themes, handlers.PagesConfig{
		Env:     "development",
		BaseURL: "http://localhost:5173",
	}, nil)

	return upresume.New(
		upresume.WithCookieOptions(cookie.WithSecret(testSecret)),
		upresume.WithHandlers(
			pages,
			handlers.NewActions(g, d.client, themes, d.users, d.store, nil),
			handlers.NewAPI(d.client, d.profiles, nil),
		),
		upresume.WithNotFoundHandler(pages.NotFound),
	)
}

func get(h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(h http.Handler, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// multipartBody builds a form with one file field.
func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
