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

	"github.com/go-chi/chi/v5"
	"github.com/hooplink/hooplink-api/brackets"
	"github.com/hooplink/hooplink-api/config"
	"github.com/hooplink/hooplink-api/db"
	"github.com/hooplink/hooplink-api/handlers"
	"github.com/hooplink/hooplink-api/repositories"
	api "github.com/hooplink/hooplink-api/routes"
	"github.com/hooplink/hooplink-api/services"
	"github.com/hooplink/hooplink-api/storage"
)

// @title HoopLink API
// @version 1.0
// @description Pickup basketball games, tournaments and live brackets.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(ctx, dbConn, logger); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	var archiveUploader storage.FileUploader
	if cfg.R2Enabled() {
		archiveUploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 is not configured, completed brackets will not be archived")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket hub started")

	tx := repositories.NewSQLTransactor(dbConn, logger)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)

	gameService := services.NewGameService(tx, gameRepo, participantRepo, logger)
	bracketService := services.NewBracketService(
		tx,
		gameRepo,
		participantRepo,
		brackets.NewSingleEliminationGenerator(),
		wsHub,
		archiveUploader,
		logger,
	)
	logger.Info("services initialized")

	go runStatusScheduler(ctx, gameService, cfg.SchedulerInterval, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewHealthHandler(dbConn, logger),
		handlers.NewGameHandler(gameService, logger),
		handlers.NewBracketHandler(bracketService, logger),
		handlers.NewWebSocketHandler(wsHub, gameService, cfg.CORSAllowedOrigins, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
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
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// runStatusScheduler moves scheduled games whose start time has passed to
// active. It runs once at startup and then on every tick until ctx ends.
func runStatusScheduler(ctx context.Context, games services.GameService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("game status scheduler started", slog.Duration("interval", interval))

	if err := games.AutoUpdateGameStatuses(ctx); err != nil {
		logger.Error("scheduler: initial run failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("game status scheduler stopped")
			return
		case <-ticker.C:
			if err := games.AutoUpdateGameStatuses(ctx); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}
}
