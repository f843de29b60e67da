package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its dialect, table and filesystem in package state.
var gooseMu sync.Mutex

// Migrate applies every pending migration found at the root of migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, cfg Config, log *slog.Logger) error {
	return withGoose(migrations, cfg, log, func() error {
		return goose.UpContext(ctx, stdlib.OpenDBFromPool(pool), ".")
	})
}

// Rollback reverts the most recently applied migration.
func Rollback(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, cfg Config, log *slog.Logger) error {
	return withGoose(migrations, cfg, log, func() error {
		return goose.DownContext(ctx, stdlib.OpenDBFromPool(pool), ".")
	})
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, cfg Config, log *slog.Logger) error {
	return withGoose(migrations, cfg, log, func() error {
		return goose.StatusContext(ctx, stdlib.OpenDBFromPool(pool), ".")
	})
}

// The *sql.DB from stdlib.OpenDBFromPool shares pool connections and must not be closed.
func withGoose(migrations fs.FS, cfg Config, log *slog.Logger, run func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log.With(slog.String("component", "goose"))})
	goose.SetTableName(cfg.migrationsTable())
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	if err := run(); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs; goose returns the error to the caller as well.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
