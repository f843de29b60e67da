// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/upresume/pkg/db"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/mailer"
	"github.com/dmitrymomot/upresume/pkg/mailer/resend"
	"github.com/dmitrymomot/upresume/pkg/oauth"
	"github.com/dmitrymomot/upresume/pkg/redis"
	"github.com/dmitrymomot/upresume/pkg/storage"
)

// Config errors.
var (
	ErrParse         = errors.New("config: parse environment")
	ErrMissingSecret = errors.New("config: AUTH_SECRET is required in production")
	ErrWeakSecret    = errors.New("config: secret must be at least 32 bytes")
	ErrInvalidURL    = errors.New("config: invalid base url")
)

// DevAuthSecret signs tokens outside production when AUTH_SECRET is unset.
const DevAuthSecret = "upresume-development-auth-secret-0000"

var baseURLs = map[logger.Env]string{
	logger.EnvDevelopment: "http://localhost:5173",
	logger.EnvStaging:     "https://staging.upresume.io",
	logger.EnvProduction:  "https://upresume.io",
}

// Config is the root configuration.
type Config struct {
	Env     logger.Env `env:"APP_ENV" envDefault:"development"`
	BaseURL string     `env:"APP_BASE_URL"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	GateWait        time.Duration `env:"GATE_WAIT" envDefault:"3s"`

	// ThemeCookieSecret is resolved by theme.ResolveSecret.
	ThemeCookieSecret string `env:"THEME_COOKIE_SECRET"`
	AuthSecret        string `env:"AUTH_SECRET"`

	// AuthBaseURL points the auth client at a remote auth service.
	// Empty means the in-process service is called directly.
	AuthBaseURL string `env:"AUTH_BASE_URL"`

	// CORSOrigins are extra origins allowed to call /api with credentials.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	Database db.Config            `envPrefix:"DATABASE_"`
	Redis    redis.Config         `envPrefix:"REDIS_"`
	Google   oauth.GoogleConfig   `envPrefix:"GOOGLE_"`
	S3       storage.Config       `envPrefix:"S3_"`
	Sentry   logger.SentryConfig  `envPrefix:"SENTRY_"`
	Mail     mailer.Config
	Resend   resend.Config

	JobWorkers int `env:"JOB_WORKERS" envDefault:"10"`
}

// Load reads .env files in development, then parses the environment.
// Missing .env files are ignored.
func Load() (*Config, error) {
	if logger.ParseEnv(os.Getenv("APP_ENV")).IsDevelopment() {
		for _, f := range []string{".env", ".dev.vars"} {
			_ = godotenv.Load(f)
		}
	}
	return parse(env.Options{})
}

// LoadFrom parses the given variables only. Used by tests and tooling.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	cfg.Env = logger.ParseEnv(string(cfg.Env))
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURLs[cfg.Env]
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if _, err := cfg.baseURL(); err != nil {
		return nil, err
	}

	if cfg.Google.RedirectURL == "" {
		cfg.Google.RedirectURL = cfg.BaseURL + "/api/auth/callback/google"
	}

	if cfg.AuthSecret, err = cfg.resolveSecret(cfg.AuthSecret); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) resolveSecret(s string) (string, error) {
	switch {
	case s == "" && c.Env.IsProduction():
		return "", ErrMissingSecret
	case s == "":
		return DevAuthSecret, nil
	case len(s) < 32:
		return "", ErrWeakSecret
	}
	return s, nil
}

// CookieDomain is the host of BaseURL, without port.
func (c *Config) CookieDomain() string {
	u, err := c.baseURL()
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// SecureCookies reports whether BaseURL is served over https.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

func (c *Config) baseURL() (*url.URL, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrInvalidURL, c.BaseURL)
	}
	return u, nil
}
