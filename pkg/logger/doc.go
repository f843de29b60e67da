// Package logger builds the process-wide *slog.Logger.
//
// The logger is constructed once in main and passed down explicitly; there is
// no package-level default. Its verbosity follows the deployment environment:
//
//	log := logger.NewForEnv(logger.ParseEnv(os.Getenv("APP_ENV")), cfg.Sentry,
//	    middlewares.RequestIDExtractor(),
//	)
//
//   - development: JSON on stdout at debug level, with source locations
//   - staging, production: errors only, forwarded to Sentry when a DSN is set
//
// Outside development nothing below error level is written, so info and
// warning records only reach stdout on a developer machine.
//
// # Context extractors
//
// A [ContextExtractor] pulls a request-scoped attribute out of the context on
// every log call. [NewLogHandlerDecorator] applies extractors to any handler:
//
//	userID := func(ctx context.Context) (slog.Attr, bool) {
//	    if id, ok := ctx.Value(userKey{}).(string); ok {
//	        return slog.String("user_id", id), true
//	    }
//	    return slog.Attr{}, false
//	}
//
// # Scopes
//
// Subsystems tag their entries with [Scope] so they can be filtered:
//
//	log.ErrorContext(ctx, "session fetch failed", logger.Scope("auth:session-fetch"), logger.Error(err))
package logger
