// Command snapshot runs a one-shot Drop Cred recompute, meant to be invoked
// from cron after each drop cycle closes.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nickhellmer/vibedrop/internal/app"
	"github.com/nickhellmer/vibedrop/internal/config"
	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/database"
	"github.com/nickhellmer/vibedrop/internal/redis"
)

func main() {
	var (
		versionsFlag = flag.String("versions", "", "Comma-separated formula versions to recompute (default: configured version)")
		replace      = flag.Bool("replace", false, "Replace prior snapshots instead of appending")
		verbose      = flag.Bool("verbose", false, "Verbose logging")
		timeout      = flag.Duration("timeout", 5*time.Minute, "Overall run timeout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	versions, err := parseVersions(*versionsFlag)
	if err != nil {
		log.Fatalf("Invalid --versions: %v", err)
	}

	zone, err := cfg.ReferenceZone()
	if err != nil {
		log.Fatalf("Failed to load reference timezone: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	snapshotRepo := database.NewSnapshotRepo(pool)
	leaderboardCache := redis.NewLeaderboardCache(redisClient.Underlying(), snapshotRepo)

	svc := app.NewService(
		database.NewUserRepo(pool),
		database.NewCircleRepo(pool),
		database.NewSubmissionRepo(pool),
		database.NewFeedbackRepo(pool),
		snapshotRepo,
		cycle.NewResolver(zone),
		leaderboardCache,
		nil,
		nil,
		clockwork.NewRealClock(),
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

	summary, err := svc.RecomputeDropCred(ctx, versions, *replace)
	if err != nil {
		log.Fatalf("Recompute failed: %v", err)
	}

	slog.Info("Recompute complete",
		"users", summary.Users,
		"versions", summary.Versions,
		"duration_ms", summary.Duration.Milliseconds())
}

func parseVersions(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	versions := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}
