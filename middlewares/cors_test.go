package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/internal"
	"github.com/dmitrymomot/upresume/middlewares"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("no origin passes through untouched", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := serve(t, req, ok, middlewares.CORS())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard by default", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://elsewhere.dev")
		rec := serve(t, req, ok, middlewares.CORS())
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.upresume.dev")
		rec := serve(t, req, ok, middlewares.CORS(
			middlewares.WithAllowOrigins("https://app.upresume.dev"),
			middlewares.WithAllowCredentials(),
			middlewares.WithExposeHeaders("X-Request-ID"),
		))
		require.Equal(t, "https://app.upresume.dev", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
		require.Contains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("disallowed origin gets no headers", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(t, req, ok, middlewares.CORS(middlewares.WithAllowOrigins("https://app.upresume.dev")))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin func", func(t *testing.T) {
		t.Parallel()
		mw := middlewares.CORS(middlewares.WithAllowOriginFunc(func(origin string) bool {
			return strings.HasSuffix(origin, ".upresume.dev")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://preview.upresume.dev")
		rec := serve(t, req, ok, mw)
		require.Equal(t, "https://preview.upresume.dev", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://upresume.dev.evil.example")
		rec = serve(t, req, ok, mw)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		t.Parallel()
		called := false
		h := func(c internal.Context) error {
			called = true
			return ok(c)
		}

		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.upresume.dev")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := serve(t, req, h, middlewares.CORS(
			middlewares.WithAllowMethods(http.MethodGet, http.MethodPost),
			middlewares.WithAllowHeaders("Content-Type"),
			middlewares.WithMaxAge(time.Hour),
		))

		require.False(t, called)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		require.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	})
}
