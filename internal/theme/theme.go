// Package theme persists the light/dark preference in a signed cookie.
package theme

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/upresume/pkg/cookie"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

// Theme is a UI color scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// CookieName is the name of the preference cookie.
const CookieName = "theme"

// maxAge keeps the preference for a year.
const maxAge = 365 * 24 * 60 * 60

// DevSecret signs the cookie outside production when THEME_COOKIE_SECRET is unset.
const DevSecret = "upresume-theme-development-secret-0000"

var (
	ErrMissingSecret = errors.New("theme: THEME_COOKIE_SECRET is required in production")
	ErrInvalidTheme  = errors.New("theme: must be light or dark")
)

// Parse accepts "light" and "dark" only.
func Parse(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case Light, Dark:
		return t, true
	default:
		return "", false
	}
}

// Toggle returns the opposite theme. An empty theme toggles to dark.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// ResolveSecret returns configured, falling back to DevSecret outside production.
func ResolveSecret(env logger.Env, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if env.IsProduction() {
		return "", ErrMissingSecret
	}
	return DevSecret, nil
}

// Resolver reads and writes the theme cookie.
type Resolver struct {
	cookies *cookie.Manager
}

// Config describes the cookie scope.
type Config struct {
	Secret string
	Domain string
	Secure bool
}

// New creates a Resolver. The cookie is httpOnly, SameSite=Lax and scoped to "/".
func New(cfg Config) (*Resolver, error) {
	m := cookie.New(
		cookie.WithSecret(cfg.Secret),
		cookie.WithDomain(cfg.Domain),
		cookie.WithPath("/"),
		cookie.WithSecure(cfg.Secure),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	if err := m.Err(); err != nil {
		return nil, err
	}
	return &Resolver{cookies: m}, nil
}

// Get returns the stored theme. Missing or tampered cookies yield ok=false.
func (r *Resolver) Get(req *http.Request) (Theme, bool) {
	v, err := r.cookies.GetSigned(req, CookieName)
	if err != nil {
		return "", false
	}
	return Parse(v)
}

// Set stores t. Anything but light or dark is rejected.
func (r *Resolver) Set(w http.ResponseWriter, t Theme) error {
	if _, ok := Parse(string(t)); !ok {
		return ErrInvalidTheme
	}
	return r.cookies.SetSigned(w, CookieName, string(t), maxAge)
}
