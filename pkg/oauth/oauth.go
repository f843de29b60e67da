package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"golang.org/x/oauth2"
)

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	endpoint    *oauth2.Endpoint
	userInfoURL string
}

// WithHTTPClient sets the client used for token and profile requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithEndpoint overrides the provider's authorization and token URLs.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(o *options) { o.endpoint = &ep }
}

// WithUserInfoURL overrides the profile endpoint.
func WithUserInfoURL(url string) Option {
	return func(o *options) { o.userInfoURL = url }
}

// NewState returns a random state value for CSRF protection.
func NewState() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// NewVerifier returns a PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}
