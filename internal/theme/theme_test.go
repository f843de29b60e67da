package theme_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

func newResolver(t *testing.T, secret string) *theme.Resolver {
	t.Helper()
	r, err := theme.New(theme.Config{Secret: secret, Domain: "upresume.io", Secure: true})
	require.NoError(t, err)
	return r
}

func TestResolver_RoundTrip(t *testing.T) {
	t.Parallel()

	r := newResolver(t, theme.DevSecret)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Set(rec, theme.Dark))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	require.Equal(t, theme.CookieName, ck.Name)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	require.Equal(t, "/", ck.Path)
	require.Equal(t, "upresume.io", ck.Domain)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	got, ok := r.Get(req)
	require.True(t, ok)
	require.Equal(t, theme.Dark, got)
}

func TestResolver_Get(t *testing.T) {
	t.Parallel()

	r := newResolver(t, theme.DevSecret)

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		got, ok := r.Get(httptest.NewRequest(http.MethodGet, "/", nil))
		require.False(t, ok)
		require.Empty(t, got)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		require.NoError(t, r.Set(rec, theme.Light))
		ck := rec.Result().Cookies()[0]
		ck.Value = "ZGFyaw." + ck.Value[len("bGlnaHQ."):]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(ck)
		_, ok := r.Get(req)
		require.False(t, ok)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		t.Parallel()
		other := newResolver(t, "another-secret-another-secret-0000")
		rec := httptest.NewRecorder()
		require.NoError(t, other.Set(rec, theme.Dark))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rec.Result().Cookies()[0])
		_, ok := r.Get(req)
		require.False(t, ok)
	})
}

func TestResolver_SetRejectsUnknown(t *testing.T) {
	t.Parallel()

	r := newResolver(t, theme.DevSecret)
	rec := httptest.NewRecorder()
	require.ErrorIs(t, r.Set(rec, theme.Theme("sepia")), theme.ErrInvalidTheme)
	require.Empty(t, rec.Result().Cookies())
}

func TestNew_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := theme.New(theme.Config{Secret: "s3cr3t"})
	require.Error(t, err)
}

func TestResolveSecret(t *testing.T) {
	t.Parallel()

	got, err := theme.ResolveSecret(logger.EnvDevelopment, "")
	require.NoError(t, err)
	require.Equal(t, theme.DevSecret, got)
	require.GreaterOrEqual(t, len(got), 32)

	got, err = theme.ResolveSecret(logger.EnvStaging, "")
	require.NoError(t, err)
	require.Equal(t, theme.DevSecret, got)

	_, err = theme.ResolveSecret(logger.EnvProduction, "")
	require.ErrorIs(t, err, theme.ErrMissingSecret)

	got, err = theme.ResolveSecret(logger.EnvProduction, "prod-secret")
	require.NoError(t, err)
	require.Equal(t, "prod-secret", got)
}

func TestParseAndToggle(t *testing.T) {
	t.Parallel()

	_, ok := theme.Parse("DARK")
	require.False(t, ok)
	got, ok := theme.Parse("light")
	require.True(t, ok)
	require.Equal(t, theme.Dark, got.Toggle())
	require.Equal(t, theme.Light, theme.Dark.Toggle())
	require.Equal(t, theme.Dark, theme.Theme("").Toggle())
}
