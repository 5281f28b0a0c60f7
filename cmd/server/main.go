package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-api/adapters/http"
	"github.com/khoahotran/portfolio-api/adapters/media_storage"
	"github.com/khoahotran/portfolio-api/adapters/persistence"
	"github.com/khoahotran/portfolio-api/internal/application/service"
	authUC "github.com/khoahotran/portfolio-api/internal/application/usecase/auth"
	certUC "github.com/khoahotran/portfolio-api/internal/application/usecase/certification"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	langUC "github.com/khoahotran/portfolio-api/internal/application/usecase/language"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	profileUC "github.com/khoahotran/portfolio-api/internal/application/usecase/profile"
	projectUC "github.com/khoahotran/portfolio-api/internal/application/usecase/project"
	skillUC "github.com/khoahotran/portfolio-api/internal/application/usecase/skill"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/tracing"
)

func main() {
	fmt.Println("Start Portfolio API Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "portfolio-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracer provider", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", err)
		}
	}()

	if err := persistence.RunMigrations(cfg, appLogger); err != nil {
		appLogger.Fatal("Cannot migrate database", err)
	}

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var (
		redisClient *redis.Client
		cache       = persistence.NewNoopCache()
	)
	if client, err := persistence.NewRedisClient(cfg, appLogger); err != nil {
		appLogger.Warn("Redis unavailable, running without cache and rate limiting", zap.Error(err))
	} else {
		redisClient = client
		cache = persistence.NewRedisCache(client)
		defer client.Close()
	}

	var publisher service.EventPublisher
	if kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger); err != nil {
		appLogger.Warn("Kafka unavailable, portfolio events will only be logged", zap.Error(err))
		publisher = event.NewNoopPublisher(appLogger)
	} else {
		publisher = kafkaClient
		defer kafkaClient.Close()
	}

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	linkRepo := persistence.NewPostgresLinkRepo(dbPool, appLogger)
	skillRepo := persistence.NewPostgresSkillRepo(dbPool, appLogger)
	certRepo := persistence.NewPostgresCertificationRepo(dbPool, appLogger)
	langRepo := persistence.NewPostgresLanguageRepo(dbPool, appLogger)
	projectRepo := persistence.NewPostgresProjectRepo(dbPool, appLogger)
	txManager := persistence.NewTxManager(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.TokenLifespan, cfg.Auth.RefreshLifespan)
	resolver := identity.NewResolver(userRepo, cfg.Portfolio.OwnerUsername, appLogger)
	guard := ownership.NewGuard(profileRepo, linkRepo, skillRepo, appLogger)
	locator := collection.NewLocator(resolver, profileRepo)
	sync := collection.NewSynchronizer(txManager, linkRepo, certRepo, langRepo, skillRepo, cache, publisher, appLogger)
	images := media.NewImageStore(uploader, publisher, appLogger)
	ttl := cfg.Redis.CacheTTL

	if _, err := resolver.Owner(context.Background()); err != nil {
		appLogger.Warn("Portfolio owner not found, anonymous reads will return 404 until it is seeded",
			zap.String("owner_username", cfg.Portfolio.OwnerUsername), zap.Error(err))
	}

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(locator, profileUC.Repositories{
		Users:          userRepo,
		Profiles:       profileRepo,
		Links:          linkRepo,
		Skills:         skillRepo,
		Certifications: certRepo,
		Languages:      langRepo,
	}, txManager, images, cache, ttl, appLogger)

	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(
			authUC.NewRegisterUseCase(txManager, userRepo, profileRepo, appLogger),
			authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger),
			authUC.NewRefreshTokenUseCase(userRepo, jwtSvc),
			authUC.NewAccountUseCase(resolver, profileRepo),
			appLogger,
		),
		Profile: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		Collection: httpAdapter.NewCollectionHandler(
			certUC.NewCertificationUseCase(locator, guard, txManager, certRepo, linkRepo, cache, ttl, appLogger),
			langUC.NewLanguageUseCase(locator, guard, txManager, langRepo, linkRepo, cache, ttl, appLogger),
			skillUC.NewSkillUseCase(locator, guard, txManager, skillRepo, linkRepo, cache, ttl, appLogger),
			collection.NewBulkUseCase(locator, sync),
			appLogger,
		),
		Project: httpAdapter.NewProjectHandler(
			projectUC.NewCreateProjectUseCase(projectRepo, appLogger),
			projectUC.NewListProjectsUseCase(resolver, projectRepo, appLogger),
			projectUC.NewGetProjectUseCase(resolver, projectRepo),
			projectUC.NewUpdateProjectUseCase(projectRepo, guard),
			projectUC.NewDeleteProjectUseCase(projectRepo, guard, images),
			projectUC.NewUploadProjectImageUseCase(projectRepo, guard, images),
			appLogger,
		),
		Feed: httpAdapter.NewFeedHandler(
			projectUC.NewFeedUseCase(resolver, projectRepo, projectUC.FeedConfig{
				Title:   cfg.Portfolio.FeedTitle,
				SiteURL: cfg.Portfolio.SiteURL,
			}, appLogger),
			appLogger,
		),
	}

	authLimiter := httpAdapter.NewRateLimiter(redisClient, httpAdapter.RateLimitConfig{
		Window:    cfg.RateLimit.Window,
		Limit:     cfg.RateLimit.Limit,
		KeyPrefix: "rate_limit:auth",
	}, appLogger)

	router := httpAdapter.NewRouter(handlers, httpAdapter.RouterConfig{
		JWT:            jwtSvc,
		Logger:         appLogger.Named("http"),
		AllowedOrigins: cfg.App.AllowedOrigins,
		AuthLimiter:    authLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	appLogger.Info("Server exiting")
}
