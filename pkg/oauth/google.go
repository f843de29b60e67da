package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleConfig holds Google client credentials. RedirectURL is usually
// derived from the application base URL.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Enabled reports whether credentials are configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Google implements Provider.
type Google struct {
	cfg         *oauth2.Config
	httpClient  *http.Client
	userInfoURL string
}

// NewGoogle creates the Google provider with email and profile scopes.
func NewGoogle(cfg GoogleConfig, opts ...Option) (*Google, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	o := options{endpoint: &google.Endpoint, userInfoURL: googleUserInfoURL}
	for _, opt := range opts {
		opt(&o)
	}

	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     *o.endpoint,
		},
		httpClient:  o.httpClient,
		userInfoURL: o.userInfoURL,
	}, nil
}

func (g *Google) Name() string { return GoogleProviderName }

func (g *Google) AuthCodeURL(state, verifier string) string {
	return g.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

func (g *Google) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	tok, err := g.cfg.Exchange(g.withClient(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, errors.Join(ErrExchangeFailed, err)
	}
	return tok, nil
}

func (g *Google) UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	ctx = g.withClient(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	resp, err := g.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var profile struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	if !profile.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &UserInfo{
		ID:      profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}, nil
}

func (g *Google) withClient(ctx context.Context) context.Context {
	if g.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

var _ Provider = (*Google)(nil)
