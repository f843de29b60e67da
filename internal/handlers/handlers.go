// Package handlers serves the HTML pages, the form actions behind them and
// the user lookup API. Auth itself lives in internal/auth; everything here
// reaches it through an authclient.Client.
package handlers

import (
	"context"
	"net/url"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/internal/view"
)

// Flash keys read by the pages. FlashError is shared with the auth API.
const (
	FlashError  = auth.FlashError
	FlashNotice = "notice"
)

// ProfileFinder looks up the public projection of a user by exact email.
type ProfileFinder interface {
	GetProfileByEmail(ctx context.Context, email string) (repository.Profile, error)
}

// ImageUpdater stores a user's avatar URL.
type ImageUpdater interface {
	UpdateUserImage(ctx context.Context, id string, image *string) error
}

// baseFor reads the theme preference of the caller.
func baseFor(themes *theme.Resolver, c upresume.Context, title string) view.Base {
	b := view.Base{Title: title}
	if themes != nil {
		b.Theme, _ = themes.Get(c.Request())
	}
	return b
}

// flashes pops the error and notice flashes. Missing ones are empty.
func flashes(c upresume.Context) (errMsg, notice string) {
	_ = c.Flash(FlashError, &errMsg)
	_ = c.Flash(FlashNotice, &notice)
	return errMsg, notice
}

// sameOriginPath returns the path and query of ref when it points at the
// host serving c, or fallback.
func sameOriginPath(c upresume.Context, ref, fallback string) string {
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request().Host) {
		return fallback
	}
	if p := u.RequestURI(); p != "" && p[0] == '/' && (len(p) < 2 || p[1] != '/') {
		return p
	}
	return fallback
}
