package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv               string `env:"APP_ENV" default:"development"`
	Port                 string `env:"PORT" default:"8080"`
	DatabaseURL          string `env:"DATABASE_URL"`
	RedisURL             string `env:"REDIS_URL"`
	SpotifyClientID      string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret  string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI   string `env:"SPOTIFY_REDIRECT_URI"`
	SessionSecret        string `env:"SESSION_SECRET"`
	LogLevel             string `env:"LOG_LEVEL" default:"info"`
	LogFormat            string `env:"LOG_FORMAT" default:"text"`
	ReferenceTimezone    string `env:"REFERENCE_TIMEZONE" default:"America/New_York"`

	ScoringVersion           int     `env:"SCORING_VERSION" default:"4"`
	ScoringExcludeSelf       bool    `env:"SCORING_EXCLUDE_SELF" default:"true"`
	ScoringPriorStrength     float64 `env:"SCORING_PRIOR_STRENGTH" default:"5"`
	ScoringPriorMeanFallback float64 `env:"SCORING_PRIOR_MEAN_FALLBACK" default:"0.7"`
	ParticipationWeight      float64 `env:"SCORING_PARTICIPATION_WEIGHT" default:"0.3"`
	ParticipationCap         int     `env:"SCORING_PARTICIPATION_CAP" default:"10"`

	CalibrationEnabled      bool    `env:"CALIBRATION_ENABLED" default:"false"`
	CalibrationTargetMean   float64 `env:"CALIBRATION_TARGET_MEAN" default:"5.0"`
	CalibrationTargetSpread float64 `env:"CALIBRATION_TARGET_SPREAD" default:"2.0"`

	FeedbackRateLimit  int           `env:"FEEDBACK_RATE_LIMIT" default:"30"`
	FeedbackRateWindow time.Duration `env:"FEEDBACK_RATE_WINDOW" default:"1m"`

	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":          cfg.DatabaseURL,
		"REDIS_URL":             cfg.RedisURL,
		"SPOTIFY_CLIENT_ID":     cfg.SpotifyClientID,
		"SPOTIFY_CLIENT_SECRET": cfg.SpotifyClientSecret,
		"SPOTIFY_REDIRECT_URI":  cfg.SpotifyRedirectURI,
		"SESSION_SECRET":        cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, err := time.LoadLocation(cfg.ReferenceTimezone); err != nil {
		return fmt.Errorf("REFERENCE_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if cfg.ScoringVersion < 1 || cfg.ScoringVersion > 4 {
		return fmt.Errorf("SCORING_VERSION must be between 1 and 4, got %d", cfg.ScoringVersion)
	}

	if cfg.ScoringPriorStrength < 0 {
		return fmt.Errorf("SCORING_PRIOR_STRENGTH must not be negative, got %g", cfg.ScoringPriorStrength)
	}

	if cfg.ScoringPriorMeanFallback < 0 || cfg.ScoringPriorMeanFallback > 1 {
		return fmt.Errorf("SCORING_PRIOR_MEAN_FALLBACK must be a rate in [0, 1], got %g", cfg.ScoringPriorMeanFallback)
	}

	if cfg.CalibrationTargetSpread <= 0 {
		return fmt.Errorf("CALIBRATION_TARGET_SPREAD must be positive, got %g", cfg.CalibrationTargetSpread)
	}

	if cfg.FeedbackRateLimit < 1 {
		return fmt.Errorf("FEEDBACK_RATE_LIMIT must be at least 1, got %d", cfg.FeedbackRateLimit)
	}

	return nil
}

// ReferenceZone loads the configured reference time zone. validate already
// checked the name, so this only fails if the zone database changed since.
func (c *Config) ReferenceZone() (*time.Location, error) {
	return time.LoadLocation(c.ReferenceTimezone)
}
