// Package internal is the HTTP kernel behind the upresume root package.
//
// Import "github.com/dmitrymomot/upresume" instead; it re-exports the public API.
//
// # Core Types
//
//   - App: owns the chi router, global middleware, health endpoints and graceful shutdown
//   - Context: request/response access plus cookies, flashes, rendering and binding
//   - Router: what handlers use to declare routes
//   - Handler: a type that declares routes
//   - HandlerFunc / Middleware / ErrorHandler: the request pipeline
//   - HTTPError: a status-carrying error, answered by DefaultErrorHandler
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed straight to pgx, go-redis
// or an HTTP client:
//
//	func (h *UserHandler) me(c upresume.Context) error {
//	    user, err := h.users.GetByEmail(c, c.Query("email"))
//	    ...
//	}
//
// # Errors
//
// A handler that returns an error hands it to the ErrorHandler. HTTPError
// values keep their status; anything else becomes a 500. Handlers that want a
// uniform JSON 500 with logging call HandleServerError directly.
//
// # Request values
//
// Middlewares attach request-scoped values with c.Set under typed keys, and
// expose them through accessor functions rather than raw keys. The gate does
// this for the session and user; RequestID middleware does it for RequestIDKey.
package internal
