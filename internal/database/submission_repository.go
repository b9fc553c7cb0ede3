package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) Insert(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string, submittedAt time.Time) (*domain.Submission, error) {
	var s domain.Submission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO submissions (user_id, circle_id, spotify_link, submitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, circle_id, spotify_link, submitted_at`,
		userID, circleID, spotifyLink, submittedAt).Scan(
		&s.ID, &s.UserID, &s.CircleID, &s.SpotifyLink, &s.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	return &s, nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, submissionID uuid.UUID) (*domain.Submission, error) {
	var s domain.Submission
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, circle_id, spotify_link, submitted_at
		FROM submissions
		WHERE id = $1`,
		submissionID).Scan(&s.ID, &s.UserID, &s.CircleID, &s.SpotifyLink, &s.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &s, nil
}

func (r *SubmissionRepo) ListByCircle(ctx context.Context, circleID uuid.UUID, since time.Time) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, circle_id, spotify_link, submitted_at
		FROM submissions
		WHERE circle_id = $1 AND submitted_at >= $2
		ORDER BY submitted_at`,
		circleID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.UserID, &s.CircleID, &s.SpotifyLink, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepo) ExistsInRange(ctx context.Context, userID, circleID uuid.UUID, from, to time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE user_id = $1 AND circle_id = $2 AND submitted_at >= $3 AND submitted_at < $4
		)`,
		userID, circleID, from, to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check submission existence: %w", err)
	}
	return exists, nil
}

// TallyForUser aggregates received feedback and the possible-vote denominator
// in one round trip. "Possible" sums each submission's circle size at query
// time. With excludeSelf the submitter's own seat is subtracted.
func (r *SubmissionRepo) TallyForUser(ctx context.Context, userID uuid.UUID, excludeSelf bool) (*domain.FeedbackTally, error) {
	tally := domain.FeedbackTally{UserID: userID}
	err := r.pool.QueryRow(ctx, `
		WITH subs AS (
			SELECT s.id, s.circle_id
			FROM submissions s
			WHERE s.user_id = $1
		),
		sizes AS (
			SELECT circle_id, COUNT(*) AS member_count
			FROM circle_memberships
			GROUP BY circle_id
		),
		denominator AS (
			SELECT
				COALESCE(SUM(GREATEST(sizes.member_count - CASE WHEN $2 THEN 1 ELSE 0 END, 0)), 0) AS possible,
				COUNT(*) AS submission_count
			FROM subs
			JOIN sizes USING (circle_id)
		),
		received AS (
			SELECT
				COALESCE(SUM(CASE WHEN f.verdict = 'like' THEN 1 ELSE 0 END), 0) AS likes,
				COALESCE(SUM(CASE WHEN f.verdict = 'dislike' THEN 1 ELSE 0 END), 0) AS dislikes
			FROM song_feedback f
			JOIN subs ON f.submission_id = subs.id
		)
		SELECT received.likes, received.dislikes, denominator.possible, denominator.submission_count
		FROM received, denominator`,
		userID, excludeSelf).Scan(&tally.Likes, &tally.Dislikes, &tally.Possible, &tally.Submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to tally feedback for user: %w", err)
	}
	return &tally, nil
}
