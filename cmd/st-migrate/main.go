package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/storage/db"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	logger.InfoContext(ctx, "starting database migration")

	if err := db.Migrate(ctx, pgxPool); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	version, err := db.MigrationVersion(ctx, pgxPool)
	if err != nil {
		return fmt.Errorf("error reading migration version: %w", err)
	}

	logger.InfoContext(ctx, "database migration completed successfully", slog.Int64("version", version))

	return nil
}
