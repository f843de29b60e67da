package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/authclient"
	"github.com/dmitrymomot/upresume/internal/gate"
	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/internal/view"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/result"
)

// Verification page messages.
const (
	msgTokenMissing   = "Verification token is missing. Please check your email link."
	msgVerifyRejected = "Failed to verify email. The link may be expired or invalid."
	msgVerifyFailed   = "An unexpected error occurred during email verification."
)

const (
	msgRegistered   = "Account created. Check your email to verify your address."
	msgPasswordSet  = "Password updated. You can now log in."
	msgResetSent    = "If an account exists for that email, a reset link is on its way."
	msgInvalidEmail = "Please enter a valid email address."
)

// PagesConfig carries what the public pages show about the deployment.
type PagesConfig struct {
	Env           string
	BaseURL       string
	GoogleEnabled bool
}

// dashboardPages are the pages behind the gate, in sidebar order.
var dashboardPages = []struct {
	path, page, title string
}{
	{"/dashboard", "dashboard", "Dashboard"},
	{"/analytics", "analytics", "Analytics"},
	{"/documents", "documents", "Documents"},
	{"/users", "users", "Users"},
	{"/account", "account", "Account"},
	{"/billing", "billing", "Billing"},
	{"/settings", "settings", "Settings"},
}

// Pages renders the public and the protected pages.
type Pages struct {
	gate   *gate.Gate
	client authclient.Client
	themes *theme.Resolver
	cfg    PagesConfig
	logger *slog.Logger

	token upresume.Extractor
}

func NewPages(g *gate.Gate, client authclient.Client, themes *theme.Resolver, cfg PagesConfig, l *slog.Logger) *Pages {
	if l == nil {
		l = logger.NewNope()
	}
	return &Pages{
		gate:   g,
		client: client,
		themes: themes,
		cfg:    cfg,
		logger: l,
		token:  upresume.NewExtractor(upresume.FromQuery("token")),
	}
}

func (h *Pages) Routes(r upresume.Router) {
	guest := h.gate.RedirectIfAuthenticated("/dashboard")
	r.GET("/", h.landing, guest)
	r.GET("/login", h.login, guest)
	r.GET("/signup", h.signup, guest)

	r.GET("/verify-email", h.verifyEmail)
	r.GET("/reset-password", h.resetPassword)
	r.POST("/forgot-password", h.forgotPassword)

	r.Group(func(r upresume.Router) {
		r.Use(h.gate.Protect())
		for _, p := range dashboardPages {
			r.GET(p.path, h.dashboard(p.page, p.title))
		}
	})
}

// NotFound is installed with upresume.WithNotFoundHandler.
func (h *Pages) NotFound(c upresume.Context) error {
	return c.Render(http.StatusNotFound, view.NotFound(baseFor(h.themes, c, "")))
}

// Placeholder is the gate's loading page, themed like the rest.
func Placeholder(themes *theme.Resolver) upresume.HandlerFunc {
	return func(c upresume.Context) error {
		return c.Render(http.StatusOK, view.Loading(view.LoadingData{
			Base:    baseFor(themes, c, ""),
			PollURL: c.Request().URL.RequestURI(),
		}))
	}
}

func (h *Pages) landing(c upresume.Context) error {
	return c.Render(http.StatusOK, view.Landing(view.LandingData{
		Base:    baseFor(h.themes, c, ""),
		Env:     h.cfg.Env,
		BaseURL: h.cfg.BaseURL,
	}))
}

func (h *Pages) authForm(c upresume.Context) view.AuthFormData {
	d := view.AuthFormData{
		Base:          baseFor(h.themes, c, ""),
		CallbackURL:   c.Query("callbackURL"),
		GoogleEnabled: h.cfg.GoogleEnabled,
	}
	d.Error, d.Notice = flashes(c)
	return d
}

func (h *Pages) login(c upresume.Context) error {
	d := h.authForm(c)
	if d.Notice == "" {
		switch {
		case c.Query("registered") == "1":
			d.Notice = msgRegistered
		case c.Query("reset") == "1":
			d.Notice = msgPasswordSet
		}
	}
	return c.Render(http.StatusOK, view.Login(d))
}

func (h *Pages) signup(c upresume.Context) error {
	return c.Render(http.StatusOK, view.Signup(h.authForm(c)))
}

func (h *Pages) verifyEmail(c upresume.Context) error {
	render := func(code int, d view.VerifyEmailData) error {
		d.Base = baseFor(h.themes, c, "")
		return c.Render(code, view.VerifyEmail(d))
	}

	token, ok := h.token.Extract(c)
	if !ok {
		return render(http.StatusBadRequest, view.VerifyEmailData{Message: msgTokenMissing})
	}

	return result.Match(h.client.VerifyEmail(c, token),
		func(bool) error {
			return render(http.StatusOK, view.VerifyEmailData{Success: true})
		},
		func(err error) error {
			if authclient.IsRejected(err) {
				return render(http.StatusBadRequest, view.VerifyEmailData{Message: msgVerifyRejected})
			}
			h.logger.ErrorContext(c, "email verification failed",
				logger.Scope("auth:email-verification"),
				logger.Error(err),
			)
			return render(http.StatusInternalServerError, view.VerifyEmailData{Message: msgVerifyFailed})
		},
	)
}

func (h *Pages) resetPassword(c upresume.Context) error {
	token, _ := h.token.Extract(c)
	errMsg, _ := flashes(c)
	return c.Render(http.StatusOK, view.ResetPassword(view.ResetPasswordData{
		Base:  baseFor(h.themes, c, ""),
		Token: token,
		Error: errMsg,
	}))
}

type forgotForm struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

// forgotPassword answers the same way whether or not the account exists.
func (h *Pages) forgotPassword(c upresume.Context) error {
	var in forgotForm
	verrs, err := c.Bind(&in)
	if err != nil || len(verrs) > 0 {
		_ = c.SetFlash(FlashError, msgInvalidEmail)
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	if err := h.client.SendResetPassword(c, in.Email, "/reset-password").Err(); err != nil {
		h.logger.ErrorContext(c, "password reset request failed",
			logger.Scope("auth:forget-password"),
			logger.Error(err),
		)
	}
	_ = c.SetFlash(FlashNotice, msgResetSent)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Pages) dashboard(page, title string) upresume.HandlerFunc {
	return func(c upresume.Context) error {
		return c.Render(http.StatusOK, view.Dashboard(page, dashboardData(h.themes, c, title)))
	}
}

// dashboardData fills the admin layout for the current request.
func dashboardData(themes *theme.Resolver, c upresume.Context, title string) view.DashboardData {
	d := view.DashboardData{
		Base: baseFor(themes, c, title),
		Nav:  view.Nav(c.Request().URL.Path),
		User: view.NewSidebarUser(gate.UserFrom(c)),
	}
	d.Error, d.Notice = flashes(c)
	return d
}
