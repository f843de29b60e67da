package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo is the provider-agnostic profile returned after sign-in.
type UserInfo struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Provider is a social sign-in provider.
type Provider interface {
	Name() string
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}
