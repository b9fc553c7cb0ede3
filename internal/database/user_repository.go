package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, spotify_id, vibedrop_username, email, sms_notifications, access_token, refresh_token, token_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.SpotifyID, &u.VibedropUsername, &u.Email, &u.SmsNotifications,
		&u.AccessToken, &u.RefreshToken, &u.TokenExpiry, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetBySpotifyID(ctx context.Context, spotifyID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE spotify_id = $1`, spotifyID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by spotify ID: %w", err)
	}
	return user, nil
}

// Upsert creates a user on first login and refreshes tokens on return visits.
// New users get a placeholder username derived from their Spotify ID until
// they pick one.
func (r *UserRepo) Upsert(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error) {
	if username == "" {
		username = "drop_" + strings.ToLower(spotifyID)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (spotify_id, vibedrop_username, access_token, refresh_token, token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()
		RETURNING `+userColumns,
		spotifyID, username, accessToken, refreshToken, tokenExpiry)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) UpdateSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET vibedrop_username = $2, email = $3, sms_notifications = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, username, email, smsNotifications)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account settings: %w", err)
	}
	return user, nil
}

func (r *UserRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
