package middlewares_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/internal"
	"github.com/dmitrymomot/upresume/middlewares"
	"github.com/dmitrymomot/upresume/pkg/id"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a ULID", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := serve(t, req, func(c internal.Context) error {
			got = middlewares.GetRequestID(c)
			return ok(c)
		}, middlewares.RequestID())

		require.Len(t, got, 26)
		_, err := id.ULIDTime(got)
		require.NoError(t, err)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("reuses upstream header", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-7")
		rec := serve(t, req, func(c internal.Context) error {
			got = c.RequestID()
			return ok(c)
		}, middlewares.RequestID())

		require.Equal(t, "corr-7", got)
		require.Equal(t, "corr-7", rec.Header().Get("X-Request-ID"))
	})

	t.Run("first configured header wins", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-1")
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := serve(t, req, ok, middlewares.RequestID())
		require.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "ignored")
		rec := serve(t, req, ok, middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Trace"),
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		))
		require.Equal(t, "fixed", rec.Header().Get("X-Trace"))
	})

	t.Run("visible to route handler context", func(t *testing.T) {
		t.Parallel()
		var got any
		req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
		serve(t, req, func(c internal.Context) error {
			got = c.Context().Value(internal.RequestIDKey{})
			return ok(c)
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "r-1" })))
		require.Equal(t, "r-1", got)
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	_, found := extract(context.Background())
	require.False(t, found)

	ctx := context.WithValue(context.Background(), internal.RequestIDKey{}, "r-42")
	attr, found := extract(ctx)
	require.True(t, found)
	require.Equal(t, "request_id", attr.Key)
	require.Equal(t, "r-42", attr.Value.String())

	t.Run("lands in log output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, logger.EnvDevelopment, extract)
		log.InfoContext(ctx, "signed in", slog.String("user_id", "u1"))
		require.Contains(t, buf.String(), "r-42")
	})
}
