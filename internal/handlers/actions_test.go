package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/pkg/htmx"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestLogout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"auth service failure", errors.New("auth down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &fakeClient{signOut: tt.err}
			rec := postForm(newApp(t, deps{client: client}), "/logout", "", nil)

			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.Equal(t, "/login", rec.Header().Get("Location"))
			_, signOuts, _ := client.counts()
			require.Equal(t, 1, signOuts)
		})
	}
}

func TestSetTheme(t *testing.T) {
	t.Parallel()

	themes, err := theme.New(theme.Config{Secret: testSecret})
	require.NoError(t, err)

	t.Run("redirects back to referer", func(t *testing.T) {
		t.Parallel()
		rec := postForm(newApp(t, deps{}), "/action/set-theme", "theme=dark", http.Header{
			"Referer": {"http://example.com/settings?tab=ui"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/settings?tab=ui", rec.Header().Get("Location"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
		got, ok := themes.Get(req)
		require.True(t, ok)
		require.Equal(t, theme.Dark, got)
	})

	t.Run("foreign referer falls back to root", func(t *testing.T) {
		t.Parallel()
		rec := postForm(newApp(t, deps{}), "/action/set-theme", "theme=light", http.Header{
			"Referer": {"https://evil.example.net/phish"},
		})
		require.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("htmx refreshes", func(t *testing.T) {
		t.Parallel()
		rec := postForm(newApp(t, deps{}), "/action/set-theme", "theme=light", http.Header{
			htmx.HeaderHXRequest: {"true"},
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "true", rec.Header().Get(htmx.HeaderHXRefresh))
	})

	t.Run("rejects unknown theme", func(t *testing.T) {
		t.Parallel()
		rec := postForm(newApp(t, deps{}), "/action/set-theme", "theme=sepia", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, rec.Result().Cookies())
	})
}

func uploadAvatar(t *testing.T, h http.Handler, data []byte, htmxRequest bool) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "avatar", "me.png", data)
	req := httptest.NewRequest(http.MethodPost, "/account/avatar", body)
	req.Header.Set("Content-Type", contentType)
	if htmxRequest {
		req.Header.Set(htmx.HeaderHXRequest, "true")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadAvatar(t *testing.T) {
	t.Parallel()

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()
		rec := uploadAvatar(t, newApp(t, deps{store: &fakeStorage{}}), pngHeader, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("stores the image and refreshes the session", func(t *testing.T) {
		t.Parallel()
		users := &fakeUsers{}
		store := &fakeStorage{}
		client := &fakeClient{session: signedIn(users)}
		app := newApp(t, deps{client: client, users: users, store: store})

		rec := uploadAvatar(t, app, pngHeader, true)
		require.Equal(t, http.StatusOK, rec.Code)

		keys := store.keys()
		require.Len(t, keys, 1)
		require.True(t, strings.HasPrefix(keys[0], "avatars/user-1/"))
		require.True(t, strings.HasSuffix(keys[0], ".png"))

		image := users.image("user-1")
		require.NotNil(t, image)
		require.Equal(t, "https://cdn.example.com/"+keys[0], *image)

		// The re-rendered sidebar shows the new avatar.
		require.Contains(t, rec.Body.String(), *image)
		require.Contains(t, rec.Body.String(), "Avatar updated.")

		sessions, _, _ := client.counts()
		require.Equal(t, 2, sessions)
	})

	t.Run("redirects with a flash", func(t *testing.T) {
		t.Parallel()
		users := &fakeUsers{}
		client := &fakeClient{session: signedIn(users)}
		app := newApp(t, deps{client: client, users: users, store: &fakeStorage{}})

		rec := uploadAvatar(t, app, pngHeader, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/account", rec.Header().Get("Location"))

		next := get(app, "/account", rec.Result().Cookies()...)
		require.Contains(t, next.Body.String(), "Avatar updated.")
	})

	t.Run("rejects non-images", func(t *testing.T) {
		t.Parallel()
		store := &fakeStorage{}
		app := newApp(t, deps{client: &fakeClient{session: signedIn(nil)}, store: store})

		rec := uploadAvatar(t, app, []byte("just some text"), true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Only JPEG, PNG, GIF and WebP images are supported.")
		require.Empty(t, store.keys())
	})

	t.Run("rolls back the upload when the user update fails", func(t *testing.T) {
		t.Parallel()
		store := &fakeStorage{}
		users := &fakeUsers{err: errors.New("db down")}
		app := newApp(t, deps{client: &fakeClient{session: signedIn(nil)}, users: users, store: store})

		rec := uploadAvatar(t, app, pngHeader, true)
		require.Contains(t, rec.Body.String(), "The avatar could not be saved.")
		require.Empty(t, store.keys())
	})

	t.Run("storage disabled", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, deps{client: &fakeClient{session: signedIn(nil)}})

		rec := uploadAvatar(t, app, pngHeader, true)
		require.Contains(t, rec.Body.String(), "Avatar uploads are not configured.")
	})
}
