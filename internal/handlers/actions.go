package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/authclient"
	"github.com/dmitrymomot/upresume/internal/gate"
	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/internal/view"
	"github.com/dmitrymomot/upresume/pkg/htmx"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/storage"
)

// MaxAvatarSize caps avatar uploads.
const MaxAvatarSize = 2 << 20

const (
	msgAvatarUpdated  = "Avatar updated."
	msgAvatarDisabled = "Avatar uploads are not configured."
	msgAvatarMissing  = "Choose an image to upload."
	msgAvatarTooLarge = "The image must be 2 MB or smaller."
	msgAvatarType     = "Only JPEG, PNG, GIF and WebP images are supported."
	msgAvatarFailed   = "The avatar could not be saved. Please try again."
)

// Actions handles the form posts that change session or preference state.
type Actions struct {
	gate    *gate.Gate
	client  authclient.Client
	themes  *theme.Resolver
	users   ImageUpdater
	storage storage.Storage
	logger  *slog.Logger
}

// NewActions wires the actions. A nil store disables avatar uploads.
func NewActions(g *gate.Gate, client authclient.Client, themes *theme.Resolver, users ImageUpdater, store storage.Storage, l *slog.Logger) *Actions {
	if l == nil {
		l = logger.NewNope()
	}
	return &Actions{
		gate:    g,
		client:  client,
		themes:  themes,
		users:   users,
		storage: store,
		logger:  l,
	}
}

func (h *Actions) Routes(r upresume.Router) {
	r.POST("/logout", h.logout)
	r.POST("/action/set-theme", h.setTheme)
	r.POST("/account/avatar", h.uploadAvatar, h.gate.Protect())
}

// logout always lands on the login page; a failed sign-out is only logged.
func (h *Actions) logout(c upresume.Context) error {
	if err := h.client.SignOut(c, c.Response(), c.Request()).Err(); err != nil {
		h.logger.ErrorContext(c, "sign out failed",
			logger.Scope("auth:logout"),
			logger.Error(err),
		)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

type themeForm struct {
	Theme string `form:"theme" json:"theme" validate:"required,oneof=light dark"`
}

func (h *Actions) setTheme(c upresume.Context) error {
	var in themeForm
	verrs, err := c.Bind(&in)
	if err != nil {
		return upresume.ErrBadRequest("Malformed request body", upresume.WithError(err))
	}
	if len(verrs) > 0 {
		return upresume.ErrBadRequest("Theme must be light or dark",
			upresume.WithErrorCode("invalid_theme"),
			upresume.WithFields(verrs.Fields()),
		)
	}

	if err := h.themes.Set(c.Response(), theme.Theme(in.Theme)); err != nil {
		return err
	}
	htmx.Refresh(c.Response(), c.Request(), sameOriginPath(c, c.Header("Referer"), "/"))
	return nil
}

func (h *Actions) uploadAvatar(c upresume.Context) error {
	if h.storage == nil {
		return h.avatarResult(c, msgAvatarDisabled, "")
	}
	user := gate.UserFrom(c)

	f, fh, err := c.FormFile("avatar")
	if err != nil {
		return h.avatarResult(c, msgAvatarMissing, "")
	}
	_ = f.Close()

	info, err := storage.PutImage(c, h.storage, fh, storage.Key("avatars", user.ID), MaxAvatarSize)
	switch {
	case errors.Is(err, storage.ErrEmptyFile):
		return h.avatarResult(c, msgAvatarMissing, "")
	case errors.Is(err, storage.ErrFileTooLarge):
		return h.avatarResult(c, msgAvatarTooLarge, "")
	case errors.Is(err, storage.ErrInvalidMIME):
		return h.avatarResult(c, msgAvatarType, "")
	case err != nil:
		h.logger.ErrorContext(c, "avatar upload failed", logger.Scope("account:avatar"), logger.Error(err))
		return h.avatarResult(c, msgAvatarFailed, "")
	}

	if err := h.users.UpdateUserImage(c, user.ID, &info.URL); err != nil {
		if derr := h.storage.Delete(c, info.Key); derr != nil {
			err = errors.Join(err, derr)
		}
		h.logger.ErrorContext(c, "avatar update failed", logger.Scope("account:avatar"), logger.Error(err))
		return h.avatarResult(c, msgAvatarFailed, "")
	}

	// The sidebar reads the user from the session, so reload it.
	h.gate.Refresh(c)
	return h.avatarResult(c, "", msgAvatarUpdated)
}

// avatarResult re-renders the account page for htmx requests and flashes
// plus redirects otherwise.
func (h *Actions) avatarResult(c upresume.Context, errMsg, notice string) error {
	if c.IsHTMX() {
		d := dashboardData(h.themes, c, "Account")
		d.Nav = view.Nav("/account")
		d.Error, d.Notice = errMsg, notice
		return c.Render(http.StatusOK, view.Dashboard("account", d))
	}
	if errMsg != "" {
		_ = c.SetFlash(FlashError, errMsg)
	} else {
		_ = c.SetFlash(FlashNotice, notice)
	}
	return c.Redirect(http.StatusSeeOther, "/account")
}
