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

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/config"
	"github.com/Dosada05/tournament-draws/db"
	"github.com/Dosada05/tournament-draws/handlers"
	"github.com/Dosada05/tournament-draws/repositories"
	api "github.com/Dosada05/tournament-draws/routes"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/Dosada05/tournament-draws/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
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

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}

	var archiver services.SnapshotArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2Config{
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
		archiver = storage.NewDrawSnapshotArchiver(uploader)
		logger.Info("draw snapshot archiving enabled", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Info("draw snapshot archiving disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	drawRepo := repositories.NewPostgresDrawRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)

	drawService := services.NewDrawService(
		dbConn,
		drawRepo,
		participantRepo,
		archiver,
		wsHub,
		services.PlacementConfig{
			DefaultCandidatesCount: cfg.DefaultCandidatesCount,
			Workers:                cfg.PlacementWorkers,
		},
		logger,
	)
	participantService := services.NewParticipantService(participantRepo, drawRepo)
	authService := services.NewAuthService(services.AuthConfig{
		OrganizerEmail:        cfg.OrganizerEmail,
		OrganizerPasswordHash: cfg.OrganizerPasswordHash,
		JWTSecret:             cfg.JWTSecretKey,
	})
	if cfg.OrganizerEmail == "" {
		logger.Warn("no organizer account configured, write endpoints are unreachable")
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{JWTSecret: cfg.JWTSecretKey, AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewAuthHandler(authService),
		handlers.NewDrawHandler(drawService),
		handlers.NewParticipantHandler(participantService),
		handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
		handlers.NewHealthHandler(dbConn),
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
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
	stop()
	logger.Info("application exited")
}
