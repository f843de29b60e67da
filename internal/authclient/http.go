package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/pkg/result"
)

// DefaultTimeout bounds every call to a remote auth service.
const DefaultTimeout = 10 * time.Second

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 1 << 20

var _ Client = (*HTTP)(nil)

// StatusError is a non-2xx answer from the auth service.
type StatusError struct {
	Message string
	Code    int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authclient: status %d", e.Code)
	}
	return fmt.Sprintf("authclient: status %d: %s", e.Code, e.Message)
}

// Is classifies 4xx as ErrRejected and everything else as ErrUnavailable.
func (e *StatusError) Is(target error) bool {
	if e.Code >= 400 && e.Code < 500 {
		return target == ErrRejected
	}
	return target == ErrUnavailable
}

// HTTP talks to an auth service over its /api/auth routes.
// The caller's cookies and Authorization header are forwarded.
type HTTP struct {
	client  *http.Client
	baseURL string
}

// HTTPOption configures the HTTP client.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default client with its DefaultTimeout.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/") + "/api/auth",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) GetSession(ctx context.Context, r *http.Request) result.Result[*auth.SessionData] {
	return result.TryCatch(ctx, func(ctx context.Context) (*auth.SessionData, error) {
		var data *auth.SessionData
		_, err := h.do(ctx, http.MethodGet, "/get-session", nil, r, &data)
		return data, err
	})
}

func (h *HTTP) VerifyEmail(ctx context.Context, token string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		var body struct {
			Status bool `json:"status"`
		}
		_, err := h.do(ctx, http.MethodGet, "/verify-email?"+url.Values{"token": {token}}.Encode(), nil, nil, &body)
		return body.Status, err
	})
}

func (h *HTTP) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		resp, err := h.do(ctx, http.MethodPost, "/sign-out", struct{}{}, r, nil)
		if resp != nil {
			for _, c := range resp.Header.Values("Set-Cookie") {
				w.Header().Add("Set-Cookie", c)
			}
		}
		return err == nil, err
	})
}

func (h *HTTP) SendResetPassword(ctx context.Context, email, redirectTo string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		in := map[string]string{"email": email, "redirectTo": redirectTo}
		_, err := h.do(ctx, http.MethodPost, "/forget-password", in, nil, nil)
		return err == nil, err
	})
}

func (h *HTTP) SendVerificationEmail(ctx context.Context, email, callbackURL string) result.Result[bool] {
	return result.TryCatch(ctx, func(ctx context.Context) (bool, error) {
		in := map[string]string{"email": email, "callbackURL": callbackURL}
		_, err := h.do(ctx, http.MethodPost, "/send-verification-email", in, nil, nil)
		return err == nil, err
	})
}

// do sends one request. in is JSON-encoded when non-nil; out receives the
// decoded 2xx body when non-nil. The response is returned with its body
// closed so headers stay readable.
func (h *HTTP) do(ctx context.Context, method, path string, in any, from *http.Request, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if from != nil {
		for _, name := range []string{"Cookie", "Authorization"} {
			if v := from.Header.Get(name); v != "" {
				req.Header.Set(name, v)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp, errors.Join(ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("authclient: decode %s: %w", path, err)
		}
	}
	return resp, nil
}

// errorMessage reads the message of an HTTPError body, if any.
func errorMessage(data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	if body.Error.Message != "" {
		return body.Error.Message
	}
	return body.Message
}
