package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/id"
	"github.com/dmitrymomot/upresume/pkg/oauth"
	"github.com/dmitrymomot/upresume/pkg/sanitizer"
)

type oauthState struct {
	State    string `json:"s"`
	Verifier string `json:"v"`
	Callback string `json:"c,omitempty"`
}

// GoogleEnabled reports whether Google sign-in is configured.
func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

// BeginGoogle stores the state and PKCE verifier in the encrypted
// oauth_state cookie and returns the consent screen URL.
func (s *Service) BeginGoogle(w http.ResponseWriter, callbackURL string) (string, error) {
	if s.google == nil {
		return "", ErrProviderDisabled
	}

	st := oauthState{
		State:    oauth.NewState(),
		Verifier: oauth.NewVerifier(),
		Callback: safeRedirect(callbackURL, ""),
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	if err := s.cookies.SetEncrypted(w, OAuthStateCookie, string(raw), int(oauthStateTTL.Seconds())); err != nil {
		return "", fmt.Errorf("auth: store oauth state: %w", err)
	}
	return s.google.AuthCodeURL(st.State, st.Verifier), nil
}

// FinishGoogle checks state, exchanges code and signs the user in.
// It returns the callback path stored by BeginGoogle, or "".
func (s *Service) FinishGoogle(w http.ResponseWriter, r *http.Request, meta Meta) (*SessionData, string, error) {
	if s.google == nil {
		return nil, "", ErrProviderDisabled
	}

	raw, err := s.cookies.GetEncrypted(r, OAuthStateCookie)
	s.cookies.Delete(w, OAuthStateCookie)
	if err != nil {
		return nil, "", errors.Join(ErrOAuthState, err)
	}
	var st oauthState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, "", errors.Join(ErrOAuthState, err)
	}
	q := r.URL.Query()
	if subtle.ConstantTimeCompare([]byte(st.State), []byte(q.Get("state"))) != 1 {
		return nil, "", ErrOAuthState
	}
	if e := q.Get("error"); e != "" {
		return nil, "", fmt.Errorf("auth: google: %s", e)
	}

	ctx := r.Context()
	tok, err := s.google.Exchange(ctx, q.Get("code"), st.Verifier)
	if err != nil {
		return nil, "", err
	}
	info, err := s.google.UserInfo(ctx, tok)
	if err != nil {
		return nil, "", err
	}

	user, err := s.linkGoogle(ctx, info)
	if err != nil {
		return nil, "", err
	}
	if user.Banned {
		return nil, "", ErrBanned
	}
	data, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, "", err
	}
	return data, st.Callback, nil
}

// linkGoogle finds the user by provider account, then by email, and creates
// one otherwise. Google addresses count as verified.
func (s *Service) linkGoogle(ctx context.Context, info *oauth.UserInfo) (*repository.User, error) {
	acc, err := s.repo.GetAccountByProvider(ctx, repository.ProviderGoogle, info.ID)
	if err == nil {
		user, err := s.repo.GetUserByID(ctx, acc.UserID)
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	email := sanitizer.Email(info.Email)
	var user repository.User
	err = s.tx(ctx, func(repo Repo) error {
		existing, err := repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			user = existing
			if !user.EmailVerified {
				if user, err = repo.MarkEmailVerified(ctx, email); err != nil {
					return err
				}
			}
		case errors.Is(err, repository.ErrNotFound):
			u := repository.User{
				ID:            id.NewULID(),
				Email:         email,
				Name:          nonEmpty(sanitizer.DisplayName(info.Name, maxNameLength)),
				Image:         nonEmpty(info.Picture),
				EmailVerified: true,
				Role:          repository.RoleUser,
			}
			if user, err = repo.CreateUser(ctx, u); err != nil {
				return err
			}
		default:
			return err
		}

		_, err = repo.CreateAccount(ctx, repository.Account{
			ID:         id.NewULID(),
			UserID:     user.ID,
			ProviderID: repository.ProviderGoogle,
			AccountID:  info.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
