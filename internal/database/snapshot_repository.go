package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
)

type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// Store persists a snapshot. With replace set, the delete and insert run in
// one transaction so at most one lifetime row exists per (user, version) at
// any point; calling it twice in a row is idempotent.
func (r *SnapshotRepo) Store(ctx context.Context, snapshot *domain.DropCredSnapshot, replace bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if replace {
		_, err = tx.Exec(ctx, `
			DELETE FROM drop_cred_snapshots
			WHERE user_id = $1 AND formula_version = $2`,
			snapshot.UserID, snapshot.FormulaVersion)
		if err != nil {
			return fmt.Errorf("failed to delete prior snapshots: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO drop_cred_snapshots (user_id, formula_version, computed_at, total_likes, total_dislikes, total_possible, score, parameters)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		snapshot.UserID, snapshot.FormulaVersion, snapshot.ComputedAt,
		snapshot.TotalLikes, snapshot.TotalDislikes, snapshot.TotalPossible,
		snapshot.Score, snapshot.Parameters).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Latest(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error) {
	var s domain.DropCredSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, formula_version, computed_at, total_likes, total_dislikes, total_possible, score, parameters
		FROM drop_cred_snapshots
		WHERE user_id = $1 AND formula_version = $2
		ORDER BY computed_at DESC
		LIMIT 1`,
		userID, version).Scan(
		&s.ID, &s.UserID, &s.FormulaVersion, &s.ComputedAt,
		&s.TotalLikes, &s.TotalDislikes, &s.TotalPossible, &s.Score, &s.Parameters)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return &s, nil
}

// LatestByVersion returns one leaderboard row per user: their most recent
// snapshot under the given formula version, best score first.
func (r *SnapshotRepo) LatestByVersion(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (s.user_id) s.user_id, u.vibedrop_username, s.score, s.computed_at
		FROM drop_cred_snapshots s
		JOIN users u ON u.id = s.user_id
		WHERE s.formula_version = $1
		ORDER BY s.user_id, s.computed_at DESC`,
		version)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Score, &e.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DISTINCT ON forces user_id ordering; re-sort by score for display.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries, nil
}
