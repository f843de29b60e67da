package internal

// Handler declares routes on a router.
//
// Example:
//
//	type UserHandler struct {
//	    users *repository.Users
//	}
//
//	func (h *UserHandler) Routes(r upresume.Router) {
//	    r.GET("/api/user/me", h.me)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may short-circuit by not calling next.
//
// Example:
//
//	func RequireAdmin(next upresume.HandlerFunc) upresume.HandlerFunc {
//	    return func(c upresume.Context) error {
//	        if u := gate.UserFrom(c); u == nil || u.Role != "admin" {
//	            return upresume.ErrForbidden("admin only")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
