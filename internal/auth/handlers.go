package auth

import (
	"errors"
	"mime"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

// FlashError is the flash key pages read auth failures from.
const FlashError = "error"

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type signInInput struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	Password    string `json:"password" form:"password" validate:"required"`
	CallbackURL string `json:"callbackURL" form:"callbackURL"`
}

type emailInput struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	CallbackURL string `json:"callbackURL" form:"callbackURL"`
	RedirectTo  string `json:"redirectTo" form:"redirectTo"`
}

type resetInput struct {
	Token       string `json:"token" form:"token" validate:"required"`
	NewPassword string `json:"newPassword" form:"newPassword" validate:"min=8,max=128"`
}

type listQuery struct {
	Limit  int `query:"limit" validate:"gte=0"`
	Offset int `query:"offset" validate:"gte=0"`
}

type statusBody struct {
	Status bool `json:"status"`
}

type listBody struct {
	Users  []repository.User `json:"users"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Routes mounts the auth API under /api/auth.
func (s *Service) Routes(r upresume.Router) {
	r.Route("/api/auth", func(r upresume.Router) {
		r.GET("/get-session", s.getSession)
		r.POST("/sign-up/email", s.signUp)
		r.POST("/sign-in/email", s.signIn)
		r.POST("/sign-out", s.signOut)
		r.GET("/verify-email", s.verifyEmail)
		r.POST("/send-verification-email", s.sendVerificationEmail)
		r.POST("/forget-password", s.forgetPassword)
		r.POST("/reset-password", s.resetPassword)
		r.GET("/sign-in/social/google", s.googleSignIn)
		r.GET("/callback/google", s.googleCallback)
		r.GET("/admin/list-users", s.listUsers)
	})
}

// sessionToken reads the signed __sid cookie, then an "Authorization: Bearer" header.
func (s *Service) sessionToken(c upresume.Context) string {
	token, _ := upresume.NewExtractor(s.fromSessionCookie, upresume.FromBearerToken()).Extract(c)
	return token
}

func (s *Service) fromSessionCookie(c upresume.Context) (string, bool) {
	v, err := s.cookies.GetSigned(c.Request(), SessionCookie)
	return v, err == nil && v != ""
}

func (s *Service) getSession(c upresume.Context) error {
	data, err := s.GetSession(c, s.sessionToken(c))
	if err != nil {
		return err
	}
	if data == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, data)
}

func (s *Service) signUp(c upresume.Context) error {
	var in SignUpInput
	if err := bind(c, &in); err != nil {
		return s.fail(c, err, "/signup")
	}

	user, err := s.SignUp(c, in)
	if err != nil {
		return s.fail(c, err, "/signup")
	}
	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, "/login?registered=1")
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (s *Service) signIn(c upresume.Context) error {
	var in signInInput
	if err := bind(c, &in); err != nil {
		return s.fail(c, err, "/login")
	}

	data, err := s.SignIn(c, in.Email, in.Password, MetaFrom(c.Request()))
	if err != nil {
		return s.fail(c, err, "/login")
	}
	if err := s.SetSessionCookie(c.Response(), data.Session); err != nil {
		return err
	}
	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, safeRedirect(in.CallbackURL, "/dashboard"))
	}
	return c.JSON(http.StatusOK, data)
}

func (s *Service) signOut(c upresume.Context) error {
	err := s.SignOut(c, s.sessionToken(c))
	s.ClearSessionCookie(c.Response())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Service) verifyEmail(c upresume.Context) error {
	token, ok := upresume.NewExtractor(upresume.FromQuery("token")).Extract(c)
	if !ok {
		return upresume.ErrBadRequest("Verification token is missing", upresume.WithErrorCode("invalid_token"))
	}
	if _, err := s.VerifyEmail(c, token); err != nil {
		return s.fail(c, err, "")
	}
	return c.JSON(http.StatusOK, statusBody{Status: true})
}

func (s *Service) sendVerificationEmail(c upresume.Context) error {
	var in emailInput
	if err := bind(c, &in); err != nil {
		return s.fail(c, err, "")
	}
	if err := s.SendVerificationEmail(c, in.Email, in.CallbackURL); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusBody{Status: true})
}

func (s *Service) forgetPassword(c upresume.Context) error {
	var in emailInput
	if err := bind(c, &in); err != nil {
		return s.fail(c, err, "")
	}
	if err := s.ForgetPassword(c, in.Email, in.RedirectTo); err != nil {
		// The answer is the same either way so accounts cannot be probed.
		s.logger.ErrorContext(c, "password reset request failed", logger.Scope("auth:forget-password"), logger.Error(err))
	}
	return c.JSON(http.StatusOK, statusBody{Status: true})
}

func (s *Service) resetPassword(c upresume.Context) error {
	var in resetInput
	err := bind(c, &in)
	if err == nil {
		err = s.ResetPassword(c, in.Token, in.NewPassword)
	}
	if err != nil {
		return s.fail(c, err, "/reset-password?"+url.Values{"token": {in.Token}}.Encode())
	}
	if isForm(c) {
		return c.Redirect(http.StatusSeeOther, "/login?reset=1")
	}
	return c.JSON(http.StatusOK, statusBody{Status: true})
}

func (s *Service) googleSignIn(c upresume.Context) error {
	target, err := s.BeginGoogle(c.Response(), c.Query("callbackURL"))
	if err != nil {
		return s.fail(c, err, "")
	}
	http.Redirect(c.Response(), c.Request(), target, http.StatusFound)
	return nil
}

func (s *Service) googleCallback(c upresume.Context) error {
	data, callback, err := s.FinishGoogle(c.Response(), c.Request(), MetaFrom(c.Request()))
	if err != nil {
		s.logger.WarnContext(c, "google sign-in failed", logger.Scope("auth:google"), logger.Error(err))
		_ = c.SetFlash(FlashError, "Google sign-in failed. Please try again.")
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if err := s.SetSessionCookie(c.Response(), data.Session); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(callback, "/dashboard"))
}

func (s *Service) listUsers(c upresume.Context) error {
	caller, err := s.GetSession(c, s.sessionToken(c))
	if err != nil {
		return err
	}

	var q listQuery
	verrs, err := c.BindQuery(&q)
	if err != nil {
		return upresume.ErrBadRequest("Malformed query", upresume.WithError(err))
	}
	if len(verrs) > 0 {
		return s.fail(c, verrs, "")
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}
	q.Limit = min(q.Limit, maxListLimit)

	var user *repository.User
	if caller != nil {
		user = caller.User
	}
	users, total, err := s.ListUsers(c, user, q.Limit, q.Offset)
	if err != nil {
		return s.fail(c, err, "")
	}
	if users == nil {
		users = []repository.User{}
	}
	return c.JSON(http.StatusOK, listBody{Users: users, Total: total, Limit: q.Limit, Offset: q.Offset})
}

// bind folds validation failures into a single error for fail.
func bind(c upresume.Context, v any) error {
	verrs, err := c.Bind(v)
	if err != nil {
		return upresume.ErrBadRequest("Malformed request body", upresume.WithErrorCode("bad_request"), upresume.WithError(err))
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// fail answers form posts with a flash and a redirect to back, and API
// calls with an HTTPError. An empty back always means an API answer.
func (s *Service) fail(c upresume.Context, err error, back string) error {
	httpErr := toHTTPError(err)
	if back != "" && isForm(c) && httpErr.Code < http.StatusInternalServerError {
		if ferr := c.SetFlash(FlashError, httpErr.Message); ferr != nil {
			return ferr
		}
		return c.Redirect(http.StatusSeeOther, back)
	}
	return httpErr
}

func toHTTPError(err error) *upresume.HTTPError {
	if verrs, ok := asValidation(err); ok {
		return upresume.ErrBadRequest("Invalid input",
			upresume.WithErrorCode("validation_failed"),
			upresume.WithFields(verrs.Fields()),
		)
	}
	if httpErr := upresume.AsHTTPError(err); httpErr != nil {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return upresume.ErrUnauthorized("Invalid email or password", upresume.WithErrorCode("invalid_credentials"))
	case errors.Is(err, ErrEmailNotVerified):
		return upresume.ErrForbidden("Please verify your email before signing in", upresume.WithErrorCode("email_not_verified"))
	case errors.Is(err, ErrBanned):
		return upresume.ErrForbidden("This account has been suspended", upresume.WithErrorCode("banned"))
	case errors.Is(err, ErrEmailTaken):
		return upresume.ErrConflict("An account with this email already exists", upresume.WithErrorCode("user_already_exists"))
	case errors.Is(err, ErrInvalidToken):
		return upresume.ErrBadRequest("Invalid or expired token", upresume.WithErrorCode("invalid_token"))
	case errors.Is(err, ErrWeakPassword):
		return upresume.ErrBadRequest("Password must be 8 to 128 characters", upresume.WithErrorCode("password_too_short"))
	case errors.Is(err, ErrNoSession):
		return upresume.ErrUnauthorized("Not signed in", upresume.WithErrorCode("unauthorized"))
	case errors.Is(err, ErrForbidden):
		return upresume.ErrForbidden("Admin role required", upresume.WithErrorCode("forbidden"))
	case errors.Is(err, ErrProviderDisabled):
		return upresume.ErrNotFound("Provider is not configured", upresume.WithErrorCode("provider_not_found"))
	}
	return upresume.ErrInternal("Internal Server Error", upresume.WithError(err))
}

func asValidation(err error) (upresume.ValidationErrors, bool) {
	var verrs upresume.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs, true
	}
	return nil, false
}

func isForm(c upresume.Context) bool {
	mt, _, _ := mime.ParseMediaType(c.Header("Content-Type"))
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}
