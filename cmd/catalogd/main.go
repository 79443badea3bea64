package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	cataloghttp "github.com/lunamart/eshop/internal/catalog/http"
	"github.com/lunamart/eshop/internal/catalog/relay"
	"github.com/lunamart/eshop/internal/catalog/repository"
	"github.com/lunamart/eshop/internal/catalog/service"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/log"
	"github.com/lunamart/eshop/internal/storage/db"
	"github.com/lunamart/eshop/internal/storage/mq"
	"github.com/lunamart/eshop/internal/telemetry"
	"github.com/lunamart/eshop/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running catalog service: %v\n", err)
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
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Catalog  config.Catalog
		Otel     config.Otel
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
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	itemRepository := repository.NewCatalogItemRepository(dbClient)
	brandRepository := repository.NewCatalogBrandRepository(dbClient)
	typeRepository := repository.NewCatalogTypeRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	catalogService := service.NewCatalogService(
		cfg.Catalog, dbClient,
		itemRepository, brandRepository, typeRepository, outboxMsgRepository,
	)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := cataloghttp.New(cfg.HTTP, logger, catalogService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
