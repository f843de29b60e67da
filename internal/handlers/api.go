package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/authclient"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/result"
	"github.com/dmitrymomot/upresume/pkg/session"
)

// Requester is the caller identity APISession attaches to API requests.
type Requester struct {
	Session   *session.Session
	User      *repository.User
	RequestID string
}

type requesterKey struct{}

// APISession resolves the caller's session once per request and stores it
// as a Requester. Anonymous callers and failed checks get an empty one.
func APISession(client authclient.Client, l *slog.Logger) upresume.Middleware {
	if l == nil {
		l = logger.NewNope()
	}
	return func(next upresume.HandlerFunc) upresume.HandlerFunc {
		return func(c upresume.Context) error {
			req := Requester{RequestID: c.RequestID()}

			data, err := client.GetSession(c, c.Request()).Unwrap()
			switch {
			case err != nil:
				l.ErrorContext(c, "session check failed",
					logger.Scope("auth:session-check"),
					logger.Error(err),
				)
			case data != nil:
				req.Session, req.User = data.Session, data.User
			}

			c.Set(requesterKey{}, req)
			return next(c)
		}
	}
}

// RequesterFrom returns the identity stored by APISession.
func RequesterFrom(c upresume.Context) Requester {
	return upresume.ContextValue[Requester](c, requesterKey{})
}

// API serves the JSON endpoints outside /api/auth.
type API struct {
	client   authclient.Client
	profiles ProfileFinder
	logger   *slog.Logger
}

func NewAPI(client authclient.Client, profiles ProfileFinder, l *slog.Logger) *API {
	if l == nil {
		l = logger.NewNope()
	}
	return &API{client: client, profiles: profiles, logger: l}
}

func (h *API) Routes(r upresume.Router) {
	r.Route("/api/user", func(r upresume.Router) {
		r.Use(APISession(h.client, h.logger))
		r.GET("/me", h.lookupUser)
	})
}

type lookupQuery struct {
	Email string `query:"email" validate:"required,email"`
}

type requesterSession struct {
	Session *session.Session `json:"session"`
	User    *repository.User `json:"user"`
}

type lookupData struct {
	LookedUpUser     repository.Profile `json:"lookedUpUser"`
	RequesterSession requesterSession   `json:"requesterSession"`
}

type lookupResponse struct {
	Success bool       `json:"success"`
	Data    lookupData `json:"data"`
	Message string     `json:"message"`
}

// lookupUser answers GET /api/user/me?email=.
func (h *API) lookupUser(c upresume.Context) error {
	var q lookupQuery
	verrs, err := c.BindQuery(&q)
	if err != nil {
		return upresume.ErrBadRequest("Malformed query", upresume.WithError(err))
	}
	if len(verrs) > 0 {
		return upresume.ErrBadRequest("Invalid email address",
			upresume.WithErrorCode("validation_failed"),
			upresume.WithFields(verrs.Fields()),
		)
	}

	res := result.TryCatch(c, func(ctx context.Context) (repository.Profile, error) {
		return h.profiles.GetProfileByEmail(ctx, q.Email)
	})

	return result.Match(res,
		func(p repository.Profile) error {
			caller := RequesterFrom(c)
			return c.JSON(http.StatusOK, lookupResponse{
				Success: true,
				Data: lookupData{
					LookedUpUser:     p,
					RequesterSession: requesterSession{Session: caller.Session, User: caller.User},
				},
				Message: "User found successfully",
			})
		},
		func(err error) error {
			if errors.Is(err, repository.ErrNotFound) {
				return upresume.ErrNotFound("User not found", upresume.WithErrorCode("user_not_found"))
			}
			return upresume.HandleServerError(c, err, "")
		},
	)
}
