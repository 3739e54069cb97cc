package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Dosada05/pickleball-tournament/brackets"
	"github.com/Dosada05/pickleball-tournament/config"
	"github.com/Dosada05/pickleball-tournament/db"
	"github.com/Dosada05/pickleball-tournament/handlers"
	"github.com/Dosada05/pickleball-tournament/repositories"
	api "github.com/Dosada05/pickleball-tournament/routes"
	"github.com/Dosada05/pickleball-tournament/services"
	"github.com/Dosada05/pickleball-tournament/storage"
	"github.com/go-chi/chi/v5"
)

const (
	shutdownTimeout = 15 * time.Second
	loadAttempts    = 5
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend),
		slog.String("tournament_id", cfg.TournamentID))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, userRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.AdminUsername != "" && cfg.AdminPasswordHash != "" {
		if _, err := services.EnsureUser(ctx, userRepo, cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
			return fmt.Errorf("failed to provision admin from environment: %w", err)
		}
		logger.Info("admin credential provisioned from environment", slog.String("username", cfg.AdminUsername))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	tournamentService := services.NewTournamentService(
		store,
		brackets.NewRoundRobinGenerator(),
		wsHub,
		logger,
		services.TournamentOptions{MaxScore: cfg.MaxScore, Locale: cfg.RankingLocale},
	)
	if err := loadWithRetry(ctx, tournamentService, logger); err != nil {
		// Сохранение приостановлено до успешной загрузки (повторяет reconcile job).
		logger.Warn("continuing with an empty tournament, persistence suspended")
	}

	// У записи снимков свой контекст: он отменяется только после остановки
	// HTTP-сервера, чтобы изменения из завершающихся запросов тоже попали в хранилище.
	saverCtx, stopSaver := context.WithCancel(context.Background())
	defer stopSaver()
	var saverDone sync.WaitGroup
	saverDone.Add(1)
	go func() {
		defer saverDone.Done()
		tournamentService.Run(saverCtx)
	}()

	scheduler, err := services.StartReconcileScheduler(ctx, tournamentService, cfg.ReconcileInterval, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}()

	authService := services.NewAuthService(userRepo, tournamentService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.AllowedOrigins, Roles: tournamentService},
		handlers.NewTournamentHandler(tournamentService, logger),
		handlers.NewAuthHandler(authService, cfg.JWTSecretKey, logger),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.AllowedOrigins, logger),
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		stop()
		stopSaver()
		saverDone.Wait()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
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
	}

	// Новых запросов больше нет: останавливаем запись и дописываем остаток.
	stopSaver()
	saverDone.Wait()
	if err := tournamentService.Flush(shutdownCtx); err != nil {
		logger.Error("final tournament flush failed", slog.Any("error", err))
	}
	logger.Info("server shutdown complete")
	return nil
}

// loadWithRetry повторяет загрузку турнира с растущей паузой.
func loadWithRetry(ctx context.Context, svc *services.TournamentService, logger *slog.Logger) error {
	var err error
	for attempt := 1; attempt <= loadAttempts; attempt++ {
		if err = svc.Load(ctx); err == nil {
			return nil
		}
		if attempt == loadAttempts {
			break
		}
		delay := time.Duration(attempt) * time.Second
		logger.Warn("retrying tournament load", slog.Int("attempt", attempt), slog.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// openStore выбирает хранилище турнира и учетных записей по STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.TournamentStore, repositories.UserRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx, dbConn); err != nil {
			dbConn.Close()
			return nil, nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database connection established")
		return repositories.NewPostgresTournamentStore(dbConn, cfg.TournamentID),
			repositories.NewPostgresUserRepository(dbConn),
			closeDB(dbConn, logger),
			nil

	case config.StoreR2:
		objects, err := storage.NewCloudflareR2Store(ctx, storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize Cloudflare R2 store: %w", err)
		}
		logger.Info("Cloudflare R2 store initialized", slog.String("bucket", cfg.R2BucketName))
		return repositories.NewR2TournamentStore(objects, cfg.TournamentID), repositories.NewMemoryUserRepository(), func() {}, nil

	default:
		logger.Warn("using in-memory store, tournament will not survive a restart")
		return repositories.NewMemoryTournamentStore(), repositories.NewMemoryUserRepository(), func() {}, nil
	}
}

func closeDB(dbConn *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
			return
		}
		logger.Info("database connection closed")
	}
}
