package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"taskroom.app/server/common/logger"
	"taskroom.app/server/core/config"
	"taskroom.app/server/core/db"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply pending database migrations and exit",
		Action: runMigrate,
	}
}

func runMigrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Setup(cfg)

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	slog.InfoContext(ctx, "migrations up to date")
	return nil
}
