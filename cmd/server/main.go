package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/nickhellmer/vibedrop/internal/app"
	"github.com/nickhellmer/vibedrop/internal/config"
	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/database"
	"github.com/nickhellmer/vibedrop/internal/logging"
	"github.com/nickhellmer/vibedrop/internal/redis"
	"github.com/nickhellmer/vibedrop/internal/server"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to ping Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	zone, err := cfg.ReferenceZone()
	if err != nil {
		slog.Error("Failed to load reference timezone", "error", err)
		os.Exit(1)
	}

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := database.NewUserRepo(pool)
	circleRepo := database.NewCircleRepo(pool)
	submissionRepo := database.NewSubmissionRepo(pool)
	feedbackRepo := database.NewFeedbackRepo(pool)
	snapshotRepo := database.NewSnapshotRepo(pool)

	leaderboardCache := redis.NewLeaderboardCache(redisClient.Underlying(), snapshotRepo)
	rateLimiter := redis.NewFeedbackRateLimiter(redisClient.Underlying(), cfg.FeedbackRateLimit, cfg.FeedbackRateWindow)

	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)

	appSvc := app.NewService(
		userRepo,
		circleRepo,
		submissionRepo,
		feedbackRepo,
		snapshotRepo,
		cycle.NewResolver(zone),
		leaderboardCache,
		rateLimiter,
		spotifyClient,
		clock,
		app.ScoringConfig{
			Version:                 cfg.ScoringVersion,
			ExcludeSelf:             cfg.ScoringExcludeSelf,
			PriorStrength:           cfg.ScoringPriorStrength,
			PriorMeanFallback:       cfg.ScoringPriorMeanFallback,
			ParticipationWeight:     cfg.ParticipationWeight,
			ParticipationCap:        cfg.ParticipationCap,
			CalibrationEnabled:      cfg.CalibrationEnabled,
			CalibrationTargetMean:   cfg.CalibrationTargetMean,
			CalibrationTargetSpread: cfg.CalibrationTargetSpread,
		},
	)

	srv := server.NewServer(cfg, appSvc, spotifyClient, pool, redisClient)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
