package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/upresume/internal/config"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/db"
	"github.com/dmitrymomot/upresume/pkg/job"
	"github.com/dmitrymomot/upresume/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or list database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Env).With(logger.Scope("migrate"))

			ctx := cmd.Context()
			pool, err := db.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			switch action {
			case "up":
				if err := db.Migrate(ctx, pool, repository.Migrations(), cfg.Database, log); err != nil {
					return err
				}
				// River keeps its own schema.
				return job.Migrate(ctx, pool)
			case "down":
				return db.Rollback(ctx, pool, repository.Migrations(), cfg.Database, log)
			case "status":
				return db.Status(ctx, pool, repository.Migrations(), cfg.Database, log)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	return cmd
}
