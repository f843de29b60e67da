package upresume

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/upresume/internal"
	"github.com/dmitrymomot/upresume/pkg/cookie"
	"github.com/dmitrymomot/upresume/pkg/health"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

// Type aliases - public API
type (
	// App owns the router, global middleware and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	Option    = internal.Option
	RunOption = internal.RunOption

	// Component is the interface for renderable templates. templ.Component satisfies it.
	Component = internal.Component

	ValidationErrors = internal.ValidationErrors
	HealthOption     = internal.HealthOption

	// ContextExtractor adds request-scoped values to every log record.
	ContextExtractor = logger.ContextExtractor

	CookieOption   = cookie.Option
	ResponseWriter = internal.ResponseWriter

	HTTPError       = internal.HTTPError
	HTTPErrorOption = internal.HTTPErrorOption

	Extractor       = internal.Extractor
	ExtractorSource = internal.ExtractorSource

	// RequestIDKey is the context key the RequestID middleware stores the ID under.
	RequestIDKey = internal.RequestIDKey
)

// New creates a new application with the given options.
//
// Example:
//
//	app := upresume.New(
//	    upresume.WithCustomLogger(log),
//	    upresume.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    upresume.WithHandlers(svc, handlers.NewPages(g, client, themes, pagesCfg, log)),
//	)
//
//	err := app.Run(upresume.Address(":8080"))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles serves subDir of fsys under pattern. Directory listings are disabled.
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithMount attaches a plain http.Handler, e.g. promhttp.Handler() at /metrics.
func WithMount(pattern string, h http.Handler) Option {
	return internal.WithMount(pattern, h)
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks mounts /health/live and /health/ready.
//
//	upresume.WithHealthChecks(
//	    upresume.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger builds a JSON logger for env tagged with component.
func WithLogger(env logger.Env, component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(env, component, extractors...)
}

// WithCustomLogger sets a fully custom logger, e.g. one from logger.NewForEnv.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// Health check options

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

func Address(addr string) RunOption {
	return internal.Address(addr)
}

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs fn before the listener opens, e.g. job.Manager.Start.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function. Hooks run in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

func WithFields(fields map[string]string) HTTPErrorOption {
	return internal.WithFields(fields)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// HandleServerError logs err and answers {"status":"error","message":msg} with 500.
func HandleServerError(c Context, err error, msg string) error {
	return internal.HandleServerError(c, err, msg)
}

// DefaultErrorHandler is the handler New installs when WithErrorHandler is not used.
func DefaultErrorHandler(c Context, err error) error {
	return internal.DefaultErrorHandler(c, err)
}

// NewExtractor returns an Extractor that tries sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource  { return internal.FromQuery(name) }
func FromBearerToken() ExtractorSource       { return internal.FromBearerToken() }

// QueryDefault parses a query parameter as T, falling back to defaultValue.
func QueryDefault[T internal.Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// ContextValue returns the request-scoped value for key as T.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}
