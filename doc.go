// Package upresume is the HTTP application kernel of the upresume web app.
//
// It re-exports the App, Router, Context and error types from the internal
// kernel. Domain packages (auth, gate, handlers) depend on the internal kernel
// directly; cmd/upresume composes them through this package.
//
// # Quick start
//
//	app := upresume.New(
//	    upresume.WithCustomLogger(log),
//	    upresume.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	    ),
//	    upresume.WithHealthChecks(
//	        upresume.WithReadinessCheck("db", db.Healthcheck(pool)),
//	        upresume.WithReadinessCheck("redis", redis.Healthcheck(rdb)),
//	    ),
//	    upresume.WithHandlers(authService, pages, users),
//	)
//
//	err := app.Run(
//	    upresume.Address(cfg.HTTPAddr),
//	    upresume.StartupHook(jobs.Start),
//	    upresume.ShutdownHook(jobs.Stop),
//	    upresume.ShutdownHook(redis.Shutdown(rdb)),
//	    upresume.ShutdownHook(db.Shutdown(pool)),
//	)
package upresume
