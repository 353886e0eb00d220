package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/event"
	"github.com/namjco/sales-tracker/internal/http"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/relay"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/internal/storage/db"
	"github.com/namjco/sales-tracker/internal/storage/mq"
	"github.com/namjco/sales-tracker/internal/telemetry"
	"github.com/namjco/sales-tracker/pkg/cmdutil"
	"github.com/namjco/sales-tracker/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC
	decimal.MarshalJSONWithoutQuotes = true

	type Config struct {
		Log       config.Log
		Postgres  config.Postgres
		HTTP      config.HTTP
		Relay     config.Relay
		Kafka     config.Kafka
		Otel      config.Otel
		Redis     config.Redis
		Dashboard config.Dashboard
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

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

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	productRepository := repository.NewProductRepository(dbClient)
	saleRepository := repository.NewSaleRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	catalogService := service.NewCatalogService(logger, dbClient, v, productRepository, outboxMsgRepository, summaryCache)
	ledgerService := service.NewLedgerService(logger, dbClient, v, saleRepository, outboxMsgRepository, summaryCache)
	dashboardService := service.NewDashboardService(cfg.Dashboard, logger, productRepository, saleRepository, summaryCache)

	interruptChan := cmdutil.InterruptChan()
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		startErr error
	)

	// a service that cannot start stops the others
	fail := func(err error) {
		errMu.Lock()
		startErr = errors.Join(startErr, err)
		errMu.Unlock()
		cancel()
	}
	wait := func() {
		select {
		case <-interruptChan:
		case <-ctx.Done():
		}
	}
	shutdownCtx := context.WithoutCancel(ctx)

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, summaryCache)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			fail(fmt.Errorf("error running event service: %w", err))
			return
		}
		logger.InfoContext(ctx, "event service started")

		wait()

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, dbClient, catalogService, ledgerService, dashboardService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			fail(fmt.Errorf("error running http service: %w", err))
			return
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		wait()

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(shutdownCtx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		wait()

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return startErr
}
