package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	basketevent "github.com/lunamart/eshop/internal/basket/event"
	baskethttp "github.com/lunamart/eshop/internal/basket/http"
	"github.com/lunamart/eshop/internal/basket/repository"
	"github.com/lunamart/eshop/internal/basket/service"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/log"
	"github.com/lunamart/eshop/internal/storage/kv"
	"github.com/lunamart/eshop/internal/storage/mq"
	"github.com/lunamart/eshop/internal/telemetry"
	"github.com/lunamart/eshop/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running basket service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Redis config.Redis
		HTTP  config.HTTP
		Kafka config.Kafka
		Otel  config.Otel
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

	redisClient, err := kv.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("error creating redis client: %w", err)
	}
	defer redisClient.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	basketRepository := repository.NewRedisBasketRepository(redisClient)
	basketService := service.NewBasketService(logger, basketRepository)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := basketevent.New(logger, kafkaConsumer, basketService)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := baskethttp.New(cfg.HTTP, logger, basketService)
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

	wg.Wait()

	return nil
}
