package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/code-arena/internal/api/http"
	"github.com/spec-kit/code-arena/internal/api/http/handlers"
	"github.com/spec-kit/code-arena/internal/api/realtime"
	"github.com/spec-kit/code-arena/internal/auth"
	"github.com/spec-kit/code-arena/internal/catalog"
	"github.com/spec-kit/code-arena/internal/config"
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/observability"
	"github.com/spec-kit/code-arena/internal/persistence"
	"github.com/spec-kit/code-arena/internal/presence"
	"github.com/spec-kit/code-arena/internal/repository/rankingcache"
	"github.com/spec-kit/code-arena/internal/service"
	"github.com/spec-kit/code-arena/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pg *persistence.Postgres
	if cfg.Store.Driver == config.StoreDriverPostgres {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
	}

	store, err := persistence.OpenStore(ctx, cfg.Store, pg, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}
	defer store.Close()

	var (
		redis *persistence.Redis
		cache service.RankingCache
	)
	if cfg.Redis.RankingCache {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		cache = rankingcache.New(redis.Client, rankingcache.DefaultTTL)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   store.Users,
		Dispatcher: dispatcher,
	})
	progressionService := service.NewProgressionService(service.ProgressionDependencies{
		UserRepo:    store.Users,
		ProblemRepo: store.Problems,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	problemService := service.NewProblemService(store.Problems, store.Users, dispatcher)
	userService := service.NewUserService(store.Users)
	rankingService := service.NewRankingService(store.Users, cache, logger)
	auditService := service.NewAuditService(dispatcher, logger, metrics)

	worker.StartAuditWorker(auditService)
	worker.StartRankingWorker(rankingService, dispatcher)

	if cfg.Catalog.SeedOnStart && cfg.Catalog.Path != "" {
		seedCatalog(ctx, cfg.Catalog.Path, problemService, logger)
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.AllowedOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redis, metrics),
		Users:          handlers.NewUsersHandler(authService, userService),
		Problems:       handlers.NewProblemsHandler(problemService, progressionService),
		Rankings:       handlers.NewRankingsHandler(rankingService),
		AuthMiddleware: authMiddleware,
	})

	coordinator := presence.NewCoordinator(logger.Named("presence"))
	rt := realtime.NewServer(cfg.Realtime, coordinator, logger.Named("realtime"))

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	go func() {
		if err := rt.Start(); err != nil {
			logger.Fatal("realtime listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = rt.Stop(shutdownCtx)
	coordinator.Close()
	_ = app.ShutdownWithContext(shutdownCtx)
}

func seedCatalog(ctx context.Context, path string, problems *service.ProblemService, logger *zap.Logger) {
	c, err := catalog.ParseFile(path, logger)
	if err != nil {
		logger.Fatal("failed to load problem catalog", zap.Error(err))
	}
	created, err := problems.Seed(ctx, c.Inputs())
	if err != nil {
		logger.Fatal("failed to seed problem catalog", zap.Error(err))
	}
	logger.Info("problem catalog seeded", zap.String("path", path), zap.Int("created", created), zap.Int("total", len(c.Problems)))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
