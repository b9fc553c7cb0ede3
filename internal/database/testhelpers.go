package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a user with default values for testing.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, spotifyID string) *domain.User {
	t.Helper()

	repo := NewUserRepo(pool)
	ctx := context.Background()
	expiry := time.Now().UTC().Add(1 * time.Hour)

	user, err := repo.Upsert(ctx, spotifyID, "tester_"+spotifyID, "access_token", "refresh_token", expiry)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}

// CreateTestCircle creates a weekly Friday circle owned by creatorID.
func CreateTestCircle(t *testing.T, pool *pgxpool.Pool, creatorID uuid.UUID, joinCode string) *domain.SoundCircle {
	t.Helper()

	repo := NewCircleRepo(pool)
	rule := domain.DropRule{
		Frequency:  domain.FrequencyWeekly,
		AnchorDay1: time.Friday,
		DropTime:   time.Date(2025, time.January, 6, 15, 0, 0, 0, time.UTC),
	}

	circle, err := repo.Create(context.Background(), "circle_"+joinCode, joinCode, creatorID, rule)
	require.NoError(t, err)

	return circle
}

// CreateTestSubmission inserts a drop for the given user and circle.
func CreateTestSubmission(t *testing.T, pool *pgxpool.Pool, userID, circleID uuid.UUID, at time.Time) *domain.Submission {
	t.Helper()

	repo := NewSubmissionRepo(pool)
	sub, err := repo.Insert(context.Background(), userID, circleID, "https://open.spotify.com/track/test", at)
	require.NoError(t, err)

	return sub
}
