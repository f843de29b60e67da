package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN     string `env:"DSN"`
	Release string `env:"RELEASE"`
}

// NewForEnv builds the process logger.
// Outside development, error records are also reported to Sentry when a DSN is set.
// Sentry init failures degrade to stdout-only logging.
func NewForEnv(env Env, cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	return newForEnv(os.Stdout, env, cfg, extractors...)
}

func newForEnv(w io.Writer, env Env, cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := jsonHandler(w, env)
	if cfg.DSN == "" || env.IsDevelopment() {
		return slog.New(NewLogHandlerDecorator(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: env.String(),
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("failed to initialize sentry", Error(err))
		return slog.New(NewLogHandlerDecorator(stdout, extractors...))
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(newMultiHandler(stdout, sentryHandler), extractors...))
}
