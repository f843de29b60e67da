package htmx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/pkg/htmx"
)

func htmxRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(htmx.HeaderHXRequest, "true")
	return req
}

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	require.True(t, htmx.IsHTMX(htmxRequest()))
	require.False(t, htmx.IsHTMX(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestLocation(t *testing.T) {
	t.Parallel()

	t.Run("htmx request uses HX-Location", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		htmx.Location(rec, htmxRequest(), "/login", http.StatusSeeOther)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "/login", rec.Header().Get(htmx.HeaderHXLocation))
		require.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("regular request redirects", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		htmx.Location(rec, httptest.NewRequest(http.MethodGet, "/", nil), "/login", http.StatusSeeOther)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestRedirectWithStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	htmx.RedirectWithStatus(rec, htmxRequest(), "/", http.StatusFound)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/", rec.Header().Get(htmx.HeaderHXRedirect))

	rec = httptest.NewRecorder()
	htmx.RedirectWithStatus(rec, httptest.NewRequest(http.MethodGet, "/x", nil), "/", http.StatusFound)
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	htmx.Refresh(rec, htmxRequest(), "/")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "true", rec.Header().Get(htmx.HeaderHXRefresh))

	rec = httptest.NewRecorder()
	htmx.Refresh(rec, httptest.NewRequest(http.MethodPost, "/action/set-theme", nil), "/settings")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/settings", rec.Header().Get("Location"))
}

func TestConfigApplyHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	htmx.NewConfig(
		htmx.WithRetarget("#main"),
		htmx.WithReswap(htmx.SwapOuterHTML),
		htmx.WithTrigger("session:loaded", "theme:changed"),
		htmx.WithPushURL("false"),
	).ApplyHeaders(rec)

	require.Equal(t, "#main", rec.Header().Get(htmx.HeaderHXRetarget))
	require.Equal(t, "outerHTML", rec.Header().Get(htmx.HeaderHXReswap))
	require.Equal(t, "session:loaded, theme:changed", rec.Header().Get(htmx.HeaderHXTrigger))
	require.Equal(t, "false", rec.Header().Get(htmx.HeaderHXPushURL))

	var nilCfg *htmx.Config
	require.NotPanics(t, func() { nilCfg.ApplyHeaders(httptest.NewRecorder()) })
}
