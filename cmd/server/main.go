package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/vova4o/goschool-api/api/swagger"
	"github.com/vova4o/goschool-api/internal/handler"
	internalmiddleware "github.com/vova4o/goschool-api/internal/middleware"
	"github.com/vova4o/goschool-api/internal/repository"
	"github.com/vova4o/goschool-api/internal/seed"
	"github.com/vova4o/goschool-api/internal/service"
	"github.com/vova4o/goschool-api/pkg/cache"
	"github.com/vova4o/goschool-api/pkg/config"
	"github.com/vova4o/goschool-api/pkg/database"
	"github.com/vova4o/goschool-api/pkg/jobs"
	"github.com/vova4o/goschool-api/pkg/logger"
	corsmiddleware "github.com/vova4o/goschool-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vova4o/goschool-api/pkg/middleware/requestid"
)

// @title GoSchool API
// @version 1.0.0
// @description Tutorials, examples, premium access and admin endpoints for the Go learning site.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache and sessions", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	tutorialRepo := repository.NewTutorialRepository(db)
	exampleRepo := repository.NewExampleRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	var cacheRepo service.CacheRepository
	var sessions service.SessionStore
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "goschool:")
		sessions = repository.NewSessionRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	var invalidator *service.CatalogInvalidator
	queue := jobs.New("catalog-cache", func(ctx context.Context, task jobs.Task) error {
		return invalidator.Handle(ctx, task)
	}, jobs.Config{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	invalidator = service.NewCatalogInvalidator(cacheSvc, queue, metrics, logr)
	queue.Start(ctx)
	defer queue.Stop()

	bootstrapSvc := service.NewBootstrapService(
		schemaRepo,
		database.NewMigrator(db, logr),
		tutorialRepo,
		exampleRepo,
		seed.MustLoad(),
		invalidator,
		metrics,
		logr,
	)
	if cfg.Bootstrap.OnStart {
		if err := runBootstrap(ctx, bootstrapSvc, cfg.Bootstrap.Seed, logr); err != nil {
			logr.Fatal("bootstrap failed", zap.Error(err))
		}
	}

	authSvc := service.NewAuthService(userRepo, sessions, bootstrapSvc, validate, metrics, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	tutorialSvc := service.NewTutorialService(tutorialRepo, cacheSvc, invalidator, validate, logr)
	exampleSvc := service.NewExampleService(exampleRepo, cacheSvc, invalidator, validate, logr)

	var limiter *internalmiddleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = internalmiddleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	routes := &handler.Router{
		Auth:      handler.NewAuthHandler(authSvc),
		Tutorials: handler.NewTutorialHandler(tutorialSvc, service.NewAccessService(tutorialRepo, userRepo, metrics, logr)),
		Examples:  handler.NewExampleHandler(exampleSvc),
		Users:     handler.NewUserHandler(service.NewUserService(userRepo, validate, logr)),
		Admin: handler.NewAdminHandler(
			service.NewDashboardService(statsRepo, cacheSvc, logr),
			bootstrapSvc,
			service.NewExportService(userRepo, tutorialRepo, cfg.Export.FontPath, logr),
		),
		SEO:         handler.NewSEOHandler(service.NewSitemapService(cfg.Site.BaseURL, tutorialSvc, exampleSvc, logr)),
		Metrics:     handler.NewMetricsHandler(metrics, schemaRepo),
		Verifier:    authSvc,
		Roles:       authSvc,
		AuthLimiter: limiter,
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	routes.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runBootstrap(ctx context.Context, svc *service.BootstrapService, withSeed bool, logr *zap.Logger) error {
	if !withSeed {
		return svc.EnsureReady(ctx)
	}
	report, err := svc.Seed(ctx)
	if err != nil {
		return err
	}
	logr.Info("baseline content seeded",
		zap.Int("created", report.CreatedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("failed", report.FailedCount),
	)
	return nil
}
