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

	"github.com/Dosada05/calcutta-bracket/brackets"
	"github.com/Dosada05/calcutta-bracket/config"
	"github.com/Dosada05/calcutta-bracket/db"
	"github.com/Dosada05/calcutta-bracket/handlers"
	"github.com/Dosada05/calcutta-bracket/middleware"
	"github.com/Dosada05/calcutta-bracket/repositories"
	api "github.com/Dosada05/calcutta-bracket/routes"
	"github.com/Dosada05/calcutta-bracket/services"
	"github.com/Dosada05/calcutta-bracket/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title Calcutta Bracket API
// @version 1.0
// @description Single-elimination bracket progression for Calcutta auction tournaments.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("snapshots_enabled", cfg.R2.Enabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 30*time.Second, logger)
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

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		logger.Error("failed to create schema", slog.Any("error", err))
		os.Exit(1)
	}

	var snapshots storage.SnapshotPublisher
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		snapshots = storage.NewSnapshotPublisher(uploader)
		logger.Info("bracket snapshots will be published to Cloudflare R2", slog.String("bucket", cfg.R2.BucketName))
	}

	hub := brackets.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	tx := repositories.NewTransactor(dbConn, logger)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)

	tournamentService := services.NewTournamentService(tx, tournamentRepo, teamRepo, gameRepo, hub, snapshots, logger)
	teamService := services.NewTeamService(tx, tournamentRepo, teamRepo, gameRepo, hub, snapshots, logger)
	bracketService := services.NewBracketService(tx, tournamentRepo, teamRepo, gameRepo, hub, snapshots, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		Bracket:    handlers.NewBracketHandler(bracketService, logger),
		WebSocket:  handlers.NewWebSocketHandler(hub, tournamentService, bracketService, cfg.CORSAllowedOrigins, logger),
		Health:     handlers.NewHealthHandler(dbConn),
	}, middleware.NewAuthenticator(cfg.JWTSecretKey, logger), cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stop()
	<-hubDone
	logger.Info("application exited")
}
