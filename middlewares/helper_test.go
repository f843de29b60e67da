package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrymomot/upresume/internal"
)

type routes func(r internal.Router)

func (fn routes) Routes(r internal.Router) { fn(r) }

// serve runs req through an App that mounts h at "/" and "/items/{id}" behind mw.
func serve(t *testing.T, req *http.Request, h internal.HandlerFunc, mw ...internal.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	app := internal.New(
		internal.WithMiddleware(mw...),
		internal.WithHandlers(routes(func(r internal.Router) {
			for _, p := range []string{"/", "/items/{id}"} {
				r.GET(p, h)
				r.POST(p, h)
				r.OPTIONS(p, h)
			}
		})),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func ok(c internal.Context) error {
	return c.String(http.StatusOK, "ok")
}
