package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/prediction-league/cache"
	"github.com/Dosada05/prediction-league/config"
	"github.com/Dosada05/prediction-league/db"
	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/jobs"
	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/metrics"
	"github.com/Dosada05/prediction-league/repositories"
	api "github.com/Dosada05/prediction-league/routes"
	"github.com/Dosada05/prediction-league/services"
	"github.com/Dosada05/prediction-league/stages"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if err := run(cfg, logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database migrations applied")

	m := metrics.New()

	var appCache cache.Cache = cache.NopCache{}
	if cfg.RedisEnabled() {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		appCache = redisCache
		logger.Info("redis cache enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("redis is not configured, caching disabled")
	}

	// Загрузчик логотипов (Cloudflare R2), опционально
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 is not configured, team logo upload disabled")
	}

	// WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(ctx)

	clock := clockwork.NewRealClock()

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	betRepo := repositories.NewPostgresBetRepository(dbConn)
	txRunner := repositories.NewTxRunner(dbConn)

	// Сервисы
	authService := services.NewAuthService(userRepo, appCache, logger)
	userService := services.NewUserService(userRepo, appCache, logger)
	teamService := services.NewTeamService(teamRepo, uploader, logger)
	stageService := services.NewStageService(stageRepo, matchRepo, services.StageServiceConfig{
		Cache:         appCache,
		CacheObserver: m,
		CacheTTL:      cfg.CacheTTL,
		Uploader:      uploader,
		Clock:         clock,
		Logger:        logger,
		ClassifierOpts: []stages.Option{
			stages.WithFailureRecorder(m),
			stages.WithMaxConcurrency(cfg.StageFetchConcurrency),
		},
	})
	matchService := services.NewMatchService(services.MatchServiceDeps{
		Tx:        txRunner,
		MatchRepo: matchRepo,
		StageRepo: stageRepo,
		TeamRepo:  teamRepo,
		BetRepo:   betRepo,
		UserRepo:  userRepo,
		Cache:     appCache,
		Hub:       hub,
		Uploader:  uploader,
		Metrics:   m,
		Clock:     clock,
		Logger:    logger,
	})
	betService := services.NewBetService(betRepo, matchRepo, stageRepo, m, clock, logger)
	leaderboardService := services.NewLeaderboardService(userRepo, betRepo, appCache, m, cfg.CacheTTL, logger)
	logger.Info("services initialized")

	// Планировщик: рассылка идущих матчей
	scheduler, err := jobs.NewScheduler(logger, clock)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	liveJob := jobs.NewLiveMatchesJob(stageService, hub, logger)
	if _, err := scheduler.AddIntervalJob(jobs.LiveMatchesJobName, cfg.LiveTickInterval, liveJob.Run); err != nil {
		return fmt.Errorf("failed to register live matches job: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	// HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService, userService, cfg.JWTSecretKey, cfg.JWTTTL, clock),
		Stage:       handlers.NewStageHandler(stageService, betService),
		Team:        handlers.NewTeamHandler(teamService),
		Match:       handlers.NewMatchHandler(matchService),
		Bet:         handlers.NewBetHandler(betService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		WebSocket:   handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger),
		Health:      handlers.NewHealthHandler(dbConn, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        m.Handler(),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}
