package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/upresume"
	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/authclient"
	"github.com/dmitrymomot/upresume/internal/config"
	"github.com/dmitrymomot/upresume/internal/gate"
	"github.com/dmitrymomot/upresume/internal/handlers"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/internal/theme"
	"github.com/dmitrymomot/upresume/internal/view"
	"github.com/dmitrymomot/upresume/middlewares"
	"github.com/dmitrymomot/upresume/pkg/cache"
	"github.com/dmitrymomot/upresume/pkg/cookie"
	"github.com/dmitrymomot/upresume/pkg/db"
	"github.com/dmitrymomot/upresume/pkg/job"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/mailer"
	"github.com/dmitrymomot/upresume/pkg/mailer/resend"
	"github.com/dmitrymomot/upresume/pkg/oauth"
	"github.com/dmitrymomot/upresume/pkg/redis"
	"github.com/dmitrymomot/upresume/pkg/session"
	"github.com/dmitrymomot/upresume/pkg/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, job workers and scheduled jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) (err error) {
	log := logger.NewForEnv(cfg.Env, cfg.Sentry, middlewares.RequestIDExtractor())

	// Everything that needs only configuration is resolved before any
	// connection is opened.
	themeSecret, err := theme.ResolveSecret(cfg.Env, cfg.ThemeCookieSecret)
	if err != nil {
		return err
	}
	themes, err := theme.New(theme.Config{
		Secret: themeSecret,
		Domain: cfg.CookieDomain(),
		Secure: cfg.SecureCookies(),
	})
	if err != nil {
		return err
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		return err
	}
	mail := mailer.New(sender, auth.Templates(), cfg.Mail)

	authOpts := []auth.Option{auth.WithLogger(log)}
	if cfg.Google.Enabled() {
		google, err := oauth.NewGoogle(cfg.Google)
		if err != nil {
			return err
		}
		authOpts = append(authOpts, auth.WithGoogle(google))
	}

	var store storage.Storage
	if cfg.S3.Enabled() {
		s3, err := storage.New(cfg.S3)
		if err != nil {
			return err
		}
		store = s3
	}

	pool, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()
	repo := repository.New(pool)

	var (
		rdb          *goredis.Client
		sessionCache cache.Cache[session.Session]
	)
	if cfg.Redis.URL != "" {
		if rdb, err = redis.Open(ctx, cfg.Redis); err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = rdb.Close()
			}
		}()
		sessionCache = cache.NewRedis[session.Session](rdb, cache.WithPrefix("upresume:session"))
	} else {
		log.Warn("REDIS_URL is not set, sessions are cached in memory")
		mem := cache.NewMemory[session.Session]()
		defer mem.Close()
		sessionCache = mem
	}
	sessions := auth.NewCachedStore(repo.Sessions(), sessionCache, log)

	jobs, err := job.NewManager(pool,
		job.WithTask[auth.EmailPayload](auth.NewVerificationEmailTask(mail, log)),
		job.WithTask[auth.EmailPayload](auth.NewPasswordResetTask(mail, log)),
		job.WithScheduledTask(auth.NewCleanupTask(sessions, repo, log)),
		job.WithMaxWorkers(cfg.JobWorkers),
		job.WithLogger(log),
	)
	if err != nil {
		return err
	}

	svc, err := auth.New(auth.Config{
		Secret:        cfg.AuthSecret,
		BaseURL:       cfg.BaseURL,
		CookieDomain:  cfg.CookieDomain(),
		SecureCookies: cfg.SecureCookies(),
	}, repo, sessions, jobs, append(authOpts, auth.WithTx(pgxTx(pool, repo)))...)
	if err != nil {
		return err
	}

	var client authclient.Client = authclient.NewLocal(svc)
	if cfg.AuthBaseURL != "" {
		client = authclient.NewHTTP(cfg.AuthBaseURL)
	}

	g := gate.New(client,
		gate.WithWait(cfg.GateWait),
		gate.WithPlaceholder(handlers.Placeholder(themes)),
		gate.WithLogger(log),
	)
	pages := handlers.NewPages(g, client, themes, handlers.PagesConfig{
		Env:           cfg.Env.String(),
		BaseURL:       cfg.BaseURL,
		GoogleEnabled: svc.GoogleEnabled(),
	}, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checks := []upresume.HealthOption{
		upresume.WithReadinessCheck("postgres", db.Healthcheck(pool)),
		upresume.WithReadinessCheck("jobs", jobs.Healthcheck),
	}
	if rdb != nil {
		checks = append(checks, upresume.WithReadinessCheck("redis", redis.Healthcheck(rdb)))
	}

	app := upresume.New(
		upresume.WithCustomLogger(log),
		upresume.WithCookieOptions(
			cookie.WithSecret(cfg.AuthSecret),
			cookie.WithDomain(cfg.CookieDomain()),
			cookie.WithSecure(cfg.SecureCookies()),
			cookie.WithHTTPOnly(true),
			cookie.WithSameSite(http.SameSiteLaxMode),
		),
		upresume.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Metrics(reg),
			middlewares.CORS(
				middlewares.WithAllowOrigins(append([]string{cfg.BaseURL}, cfg.CORSOrigins...)...),
				middlewares.WithAllowCredentials(),
			),
			middlewares.Timeout(cfg.RequestTimeout),
		),
		upresume.WithHandlers(
			svc,
			pages,
			handlers.NewActions(g, client, themes, repo, store, log),
			handlers.NewAPI(client, repo, log),
		),
		upresume.WithStaticFiles("/static", view.Static(), "."),
		upresume.WithMount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		upresume.WithNotFoundHandler(pages.NotFound),
		upresume.WithHealthChecks(checks...),
	)

	runOpts := []upresume.RunOption{
		upresume.WithContext(ctx),
		upresume.Address(cfg.HTTPAddr),
		upresume.ShutdownTimeout(cfg.ShutdownTimeout),
		upresume.StartupHook(jobs.Start),
		upresume.ShutdownHook(jobs.Stop),
	}
	if rdb != nil {
		runOpts = append(runOpts, upresume.ShutdownHook(redis.Shutdown(rdb)))
	}
	runOpts = append(runOpts, upresume.ShutdownHook(db.Shutdown(pool)))

	log.Info("starting server",
		slog.String("addr", cfg.HTTPAddr),
		slog.String("env", cfg.Env.String()),
		slog.Bool("google", svc.GoogleEnabled()),
		slog.Bool("s3", store != nil),
		slog.Bool("remote_auth", cfg.AuthBaseURL != ""),
	)
	return app.Run(runOpts...)
}

// newSender picks Resend when an API key is set and logs emails otherwise.
// Production refuses to start without a real sender.
func newSender(cfg *config.Config, log *slog.Logger) (mailer.Sender, error) {
	if cfg.Resend.APIKey != "" {
		return resend.New(cfg.Resend)
	}
	if cfg.Env.IsProduction() {
		return nil, errors.New("RESEND_API_KEY is required in production")
	}
	return mailer.NewLogSender(log), nil
}

// pgxTx runs auth writes in one transaction against a tx-bound repository.
func pgxTx(pool *pgxpool.Pool, repo *repository.Repository) auth.TxFunc {
	return func(ctx context.Context, fn func(auth.Repo) error) error {
		return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
			return fn(repo.WithTx(tx))
		})
	}
}
