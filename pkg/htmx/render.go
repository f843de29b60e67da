package htmx

import (
	"net/http"
	"strings"
)

// SwapStrategy defines how htmx swaps content into the target element.
type SwapStrategy string

// Swap strategies used by the views.
const (
	SwapInnerHTML SwapStrategy = "innerHTML"
	SwapOuterHTML SwapStrategy = "outerHTML"
	SwapNone      SwapStrategy = "none"
)

// Config holds response headers applied when rendering for an htmx request.
type Config struct {
	Retarget string
	Reswap   SwapStrategy
	PushURL  string
	Triggers []string
	Refresh  bool
}

// RenderOption configures htmx response headers.
type RenderOption func(*Config)

// NewConfig creates a Config from options.
func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders sets the configured headers. It must run before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}

	h := w.Header()
	if c.Retarget != "" {
		h.Set(HeaderHXRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderHXReswap, string(c.Reswap))
	}
	if c.PushURL != "" {
		h.Set(HeaderHXPushURL, c.PushURL)
	}
	if len(c.Triggers) > 0 {
		h.Set(HeaderHXTrigger, strings.Join(c.Triggers, ", "))
	}
	if c.Refresh {
		h.Set(HeaderHXRefresh, "true")
	}
}

// WithRetarget changes the element the response is swapped into.
func WithRetarget(selector string) RenderOption {
	return func(c *Config) { c.Retarget = selector }
}

// WithReswap changes the swap strategy.
func WithReswap(strategy SwapStrategy) RenderOption {
	return func(c *Config) { c.Reswap = strategy }
}

// WithPushURL updates browser history. Pass "false" to suppress it.
func WithPushURL(url string) RenderOption {
	return func(c *Config) { c.PushURL = url }
}

// WithTrigger fires client-side events after the response is processed.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) { c.Triggers = append(c.Triggers, events...) }
}

// WithRefresh forces a full page refresh.
func WithRefresh() RenderOption {
	return func(c *Config) { c.Refresh = true }
}
