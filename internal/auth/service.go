// Package auth is the in-process authentication service: email and password
// sign-up with verification, Google sign-in, cookie sessions cached in Redis,
// password reset and an admin user listing. Pages and the API reach it only
// through internal/authclient.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/cookie"
	"github.com/dmitrymomot/upresume/pkg/id"
	"github.com/dmitrymomot/upresume/pkg/job"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/oauth"
	"github.com/dmitrymomot/upresume/pkg/sanitizer"
	"github.com/dmitrymomot/upresume/pkg/session"
)

// Cookie names.
const (
	SessionCookie    = "__sid"
	OAuthStateCookie = "oauth_state"
)

const (
	maxNameLength   = 100
	oauthStateTTL   = 10 * time.Minute
	resetIdentifier = "reset-password:"
)

// Repo is the subset of repository.Repository the service needs.
type Repo interface {
	CreateUser(ctx context.Context, u repository.User) (repository.User, error)
	GetUserByID(ctx context.Context, id string) (repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	MarkEmailVerified(ctx context.Context, email string) (repository.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]repository.User, int, error)

	CreateAccount(ctx context.Context, a repository.Account) (repository.Account, error)
	GetAccount(ctx context.Context, userID, providerID string) (repository.Account, error)
	GetAccountByProvider(ctx context.Context, providerID, accountID string) (repository.Account, error)
	UpdatePassword(ctx context.Context, userID, hash string) error

	CreateVerification(ctx context.Context, v repository.Verification) error
	ConsumeVerification(ctx context.Context, value string) (repository.Verification, error)
	DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}

// TxFunc runs fn against a Repo bound to one transaction.
type TxFunc func(ctx context.Context, fn func(Repo) error) error

// Sessions is the session store. CachedStore satisfies it.
type Sessions interface {
	session.Store
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionData is what get-session returns: the session and its user.
// The session token is never serialized.
type SessionData struct {
	Session *session.Session `json:"session"`
	User    *repository.User `json:"user"`
}

// Meta describes the client a session is issued to.
type Meta struct {
	IP        string
	UserAgent string
}

// MetaFrom reads client metadata from r.
func MetaFrom(r *http.Request) Meta {
	ip := r.Header.Get("X-Forwarded-For")
	if first, _, ok := strings.Cut(ip, ","); ok {
		ip = first
	}
	if ip = strings.TrimSpace(ip); ip == "" {
		ip = r.RemoteAddr
	}
	return Meta{IP: ip, UserAgent: r.UserAgent()}
}

// Config holds the service settings derived from the app config.
type Config struct {
	Secret        string
	BaseURL       string
	CookieDomain  string
	SecureCookies bool
}

// Service implements authentication.
type Service struct {
	repo     Repo
	tx       TxFunc
	sessions Sessions
	jobs     job.Enqueuer
	google   oauth.Provider
	cookies  *cookie.Manager
	tokens   *tokens
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithGoogle enables Google sign-in.
func WithGoogle(p oauth.Provider) Option {
	return func(s *Service) {
		s.google = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTx sets the transaction runner for multi-row writes.
// Without it writes run on repo directly.
func WithTx(fn TxFunc) Option {
	return func(s *Service) {
		s.tx = fn
	}
}

// New creates the auth service. Emails are enqueued on jobs.
func New(cfg Config, repo Repo, sessions Sessions, jobs job.Enqueuer, opts ...Option) (*Service, error) {
	cookies := cookie.New(
		cookie.WithSecret(cfg.Secret),
		cookie.WithDomain(cfg.CookieDomain),
		cookie.WithSecure(cfg.SecureCookies),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	if err := cookies.Err(); err != nil {
		return nil, fmt.Errorf("auth: session cookies: %w", err)
	}

	s := &Service{
		repo:     repo,
		sessions: sessions,
		jobs:     jobs,
		cookies:  cookies,
		tokens:   newTokens(cfg.Secret, strings.TrimRight(cfg.BaseURL, "/")),
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		logger:   logger.NewNope(),
		now:      time.Now,
	}
	s.tx = func(ctx context.Context, fn func(Repo) error) error { return fn(s.repo) }
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignUpInput is the sign-up request body.
type SignUpInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	Password    string `json:"password" form:"password" validate:"min=8,max=128"`
	CallbackURL string `json:"callbackURL" form:"callbackURL"`
}

// SignUp creates an unverified user with a credential account and enqueues
// the verification email.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*repository.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	name := sanitizer.DisplayName(in.Name, maxNameLength)
	var user repository.User
	err = s.tx(ctx, func(repo Repo) error {
		var err error
		user, err = repo.CreateUser(ctx, repository.User{
			ID:    id.NewULID(),
			Email: sanitizer.Email(in.Email),
			Name:  nonEmpty(name),
			Role:  repository.RoleUser,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}
		_, err = repo.CreateAccount(ctx, repository.Account{
			ID:           id.NewULID(),
			UserID:       user.ID,
			ProviderID:   repository.ProviderCredential,
			AccountID:    user.ID,
			PasswordHash: &hash,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueueVerification(ctx, &user, in.CallbackURL); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignIn checks the password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string, meta Meta) (*SessionData, error) {
	user, err := s.repo.GetUserByEmail(ctx, sanitizer.Email(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	acc, err := s.repo.GetAccount(ctx, user.ID, repository.ProviderCredential)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && acc.PasswordHash == nil) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := verifyPassword(password, *acc.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.Banned {
		return nil, ErrBanned
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return s.openSession(ctx, &user, meta)
}

func (s *Service) openSession(ctx context.Context, user *repository.User, meta Meta) (*SessionData, error) {
	token, err := id.NewToken(32)
	if err != nil {
		return nil, err
	}
	sess := session.New(id.NewULID(), user.ID, token, session.DefaultTTL)
	sess.IP, sess.UserAgent = meta.IP, meta.UserAgent

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &SessionData{Session: sess, User: user}, nil
}

// SignOut deletes the session. An empty token is a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// GetSession resolves token. Missing, expired and orphaned sessions yield nil
// without error; only infrastructure failures are errors.
func (s *Service) GetSession(ctx context.Context, token string) (*SessionData, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrInvalidToken):
		return nil, nil
	case err != nil:
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.sessions.Delete(ctx, token)
	}
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, nil
	}
	return &SessionData{Session: sess, User: &user}, nil
}

// SendVerificationEmail enqueues a verification email. Unknown and already
// verified addresses are accepted silently.
func (s *Service) SendVerificationEmail(ctx context.Context, email, callbackURL string) error {
	user, err := s.repo.GetUserByEmail(ctx, sanitizer.Email(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.enqueueVerification(ctx, &user, callbackURL)
}

func (s *Service) enqueueVerification(ctx context.Context, user *repository.User, callbackURL string) error {
	token, err := s.tokens.issue(user.Email, purposeVerify, VerifyTokenTTL)
	if err != nil {
		return err
	}

	q := url.Values{"token": {token}}
	if cb := safeRedirect(callbackURL, ""); cb != "" {
		q.Set("callbackURL", cb)
	}
	return s.jobs.Enqueue(ctx, TaskSendVerificationEmail, EmailPayload{
		To:   user.Email,
		Name: user.DisplayName("there"),
		URL:  s.baseURL + "/verify-email?" + q.Encode(),
	})
}

// VerifyEmail marks the token's address as verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*repository.User, error) {
	email, err := s.tokens.verify(token, purposeVerify)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.MarkEmailVerified(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgetPassword stores a single-use reset token and enqueues the email.
// Unknown addresses are accepted silently so callers cannot probe accounts.
func (s *Service) ForgetPassword(ctx context.Context, email, redirectTo string) error {
	user, err := s.repo.GetUserByEmail(ctx, sanitizer.Email(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := id.NewToken(32)
	if err != nil {
		return err
	}
	err = s.repo.CreateVerification(ctx, repository.Verification{
		ID:         id.NewUUID(),
		Identifier: resetIdentifier + user.ID,
		Value:      token,
		ExpiresAt:  s.now().Add(ResetTokenTTL),
	})
	if err != nil {
		return err
	}

	page := safeRedirect(redirectTo, "/reset-password")
	return s.jobs.Enqueue(ctx, TaskSendPasswordReset, EmailPayload{
		To:   user.Email,
		Name: user.DisplayName("there"),
		URL:  s.baseURL + page + "?" + url.Values{"token": {token}}.Encode(),
	})
}

// ResetPassword consumes token, sets the new password and revokes every
// session of the user.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	v, err := s.repo.ConsumeVerification(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	userID, ok := strings.CutPrefix(v.Identifier, resetIdentifier)
	if !ok {
		return ErrInvalidToken
	}

	err = s.tx(ctx, func(repo Repo) error {
		err := repo.UpdatePassword(ctx, userID, hash)
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		// Google-only users get a credential account on first reset.
		_, err = repo.CreateAccount(ctx, repository.Account{
			ID:           id.NewULID(),
			UserID:       userID,
			ProviderID:   repository.ProviderCredential,
			AccountID:    userID,
			PasswordHash: &hash,
		})
		return err
	})
	if err != nil {
		return err
	}
	return s.sessions.DeleteByUserID(ctx, userID)
}

// ListUsers requires an admin caller.
func (s *Service) ListUsers(ctx context.Context, caller *repository.User, limit, offset int) ([]repository.User, int, error) {
	if caller == nil {
		return nil, 0, ErrNoSession
	}
	if caller.Role != repository.RoleAdmin {
		return nil, 0, ErrForbidden
	}
	return s.repo.ListUsers(ctx, limit, offset)
}

// Cleanup removes expired sessions and verification records.
func (s *Service) Cleanup(ctx context.Context, now time.Time) (sessions, verifications int64, err error) {
	return NewCleanupTask(s.sessions, s.repo, s.logger).Run(ctx, now)
}

// TokenFromRequest returns the session token from the signed __sid cookie,
// or from an "Authorization: Bearer" header. Route handlers use sessionToken;
// this form serves callers that hold only the *http.Request.
func (s *Service) TokenFromRequest(r *http.Request) string {
	if v, err := s.cookies.GetSigned(r, SessionCookie); err == nil && v != "" {
		return v
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// SetSessionCookie writes the signed __sid cookie for the session lifetime.
func (s *Service) SetSessionCookie(w http.ResponseWriter, sess *session.Session) error {
	return s.cookies.SetSigned(w, SessionCookie, sess.Token, int(sess.Remaining().Seconds()))
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter) {
	s.cookies.Delete(w, SessionCookie)
}

// safeRedirect accepts same-origin absolute paths only.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
