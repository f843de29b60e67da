// Package db opens pgx connection pools and applies goose migrations.
//
// Settings come from environment variables, nested by the application
// config under the DATABASE_ prefix:
//
//	DATABASE_URL                - PostgreSQL connection URL (required)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//	DATABASE_MAX_CONNS          - maximum pool size (default: 10)
//	DATABASE_MIN_CONNS          - minimum idle connections (default: 2)
//	DATABASE_MAX_CONN_IDLE_TIME - idle connection lifetime (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - total connection lifetime (default: 30m)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default: 1m)
//	DATABASE_RETRY_ATTEMPTS     - startup connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - base wait between attempts (default: 5s)
//
// # Usage
//
//	pool, err := db.Open(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database, log); err != nil {
//		return err
//	}
//
//	app := upresume.New(
//		upresume.WithHealthChecks(upresume.Checks{"db": db.Healthcheck(pool)}),
//		upresume.WithShutdownHook(db.Shutdown(pool)),
//	)
//
// Query code takes a DBTX so it runs the same against the pool or inside WithTx.
package db
