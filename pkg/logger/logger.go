package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger on stdout gated by the environment's level.
func New(env Env, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, env, extractors...)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, env Env, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(jsonHandler(w, env), extractors...))
}

func jsonHandler(w io.Writer, env Env) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     env.Level(),
		AddSource: env.IsDevelopment(),
	})
}

// Scope tags a log entry with the subsystem that produced it,
// e.g. "auth:session-fetch".
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error renders err as a log attribute. A nil error yields an empty string value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
