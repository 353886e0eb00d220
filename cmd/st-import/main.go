package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/legacy"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/internal/storage/db"
	"github.com/namjco/sales-tracker/pkg/validator"
)

func main() {
	var filePath, tz string
	flag.StringVar(&filePath, "file", "", "Path to a local-storage export (JSON with products and sales)")
	flag.StringVar(&tz, "tz", "UTC", "IANA time zone of export dates that carry no offset")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(filePath, tz); err != nil {
		fmt.Printf("error running import application: %v\n", err)
		os.Exit(1)
	}
}

func run(filePath, tz string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		Redis    config.Redis
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("error loading time zone: %w", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening export: %w", err)
	}
	defer f.Close()

	exp, err := legacy.Decode(f, loc)
	if err != nil {
		return fmt.Errorf("error decoding export: %w", err)
	}

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	summaryCache, cleanupCache, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("error creating summary cache: %w", err)
	}
	defer cleanupCache()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)
	catalogService := service.NewCatalogService(logger, dbClient, v, repository.NewProductRepository(dbClient), outboxMsgRepository, summaryCache)
	ledgerService := service.NewLedgerService(logger, dbClient, v, repository.NewSaleRepository(dbClient), outboxMsgRepository, summaryCache)

	start := time.Now()
	res, err := legacy.NewImporter(logger, catalogService, ledgerService).Run(ctx, exp)
	if err != nil {
		return fmt.Errorf("error importing: %w", err)
	}

	logger.InfoContext(ctx, "import completed",
		slog.Int("products", res.Products),
		slog.Int("sales", res.Sales),
		slog.Int("skipped", res.Skipped),
		slog.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)

	return nil
}
