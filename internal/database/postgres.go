package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

// RunMigrations applies the schema. Statements are idempotent so startup can
// run them unconditionally.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			spotify_id TEXT UNIQUE NOT NULL,
			vibedrop_username TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			sms_notifications BOOLEAN NOT NULL DEFAULT FALSE,
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			token_expiry TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_spotify_id ON users(spotify_id)`,
		`CREATE TABLE IF NOT EXISTS sound_circles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			join_code TEXT UNIQUE NOT NULL,
			creator_id UUID REFERENCES users(id) ON DELETE SET NULL,
			drop_frequency TEXT NOT NULL DEFAULT 'weekly',
			anchor_day_1 INT NOT NULL DEFAULT 5,
			anchor_day_2 INT,
			drop_time TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS circle_memberships (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			circle_id UUID NOT NULL REFERENCES sound_circles(id) ON DELETE CASCADE,
			is_owner BOOLEAN NOT NULL DEFAULT FALSE,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, circle_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_circle ON circle_memberships(circle_id)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			circle_id UUID NOT NULL REFERENCES sound_circles(id) ON DELETE CASCADE,
			spotify_link TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_circle_time ON submissions(circle_id, submitted_at)`,
		`CREATE TABLE IF NOT EXISTS song_feedback (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			rater_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			verdict TEXT NOT NULL CHECK (verdict IN ('like', 'dislike')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (submission_id, rater_id)
		)`,
		`CREATE TABLE IF NOT EXISTS drop_cred_snapshots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			formula_version INT NOT NULL,
			computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			total_likes INT NOT NULL DEFAULT 0,
			total_dislikes INT NOT NULL DEFAULT 0,
			total_possible INT NOT NULL DEFAULT 0,
			score DOUBLE PRECISION NOT NULL,
			parameters JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_user_version ON drop_cred_snapshots(user_id, formula_version, computed_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("Database migrations completed")
	return nil
}
