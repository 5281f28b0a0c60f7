package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/adapters/event"
	"github.com/khoahotran/portfolio-api/adapters/media_storage"
	"github.com/khoahotran/portfolio-api/adapters/persistence"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/tracing"
)

func main() {
	fmt.Println("Starting Portfolio Worker...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel).Named("worker")
	defer appLogger.Sync()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "portfolio-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracer provider", err)
	}
	defer tp.Shutdown(context.Background())

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	cache := persistence.NewNoopCache()
	if client, err := persistence.NewRedisClient(cfg, appLogger); err != nil {
		appLogger.Warn("Redis unavailable, cached portfolio reads will expire by TTL only", zap.Error(err))
	} else {
		cache = persistence.NewRedisCache(client)
		defer client.Close()
	}

	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	projectRepo := persistence.NewPostgresProjectRepo(dbPool, appLogger)
	processEventUC := media.NewProcessEventUseCase(profileRepo, projectRepo, uploader, cache, appLogger)

	consumer := event.NewConsumer(cfg, appLogger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx, processEventUC.Execute); err != nil {
		appLogger.Error("Worker stopped with error", err)
	}
	appLogger.Info("Worker exiting")
}
