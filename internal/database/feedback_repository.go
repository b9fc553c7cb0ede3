package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nickhellmer/vibedrop/internal/domain"
)

type FeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *FeedbackRepo {
	return &FeedbackRepo{pool: pool}
}

// Upsert records a verdict. A rater may change their mind but never holds two
// verdicts on the same submission; the unique constraint backs that up.
func (r *FeedbackRepo) Upsert(ctx context.Context, submissionID, raterID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error) {
	var f domain.SongFeedback
	err := r.pool.QueryRow(ctx, `
		INSERT INTO song_feedback (submission_id, rater_id, verdict, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (submission_id, rater_id) DO UPDATE SET
			verdict = EXCLUDED.verdict,
			updated_at = NOW()
		RETURNING id, submission_id, rater_id, verdict, created_at, updated_at`,
		submissionID, raterID, string(verdict)).Scan(
		&f.ID, &f.SubmissionID, &f.RaterID, &f.Verdict, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return &f, nil
}

func (r *FeedbackRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, submission_id, rater_id, verdict, created_at, updated_at
		FROM song_feedback
		WHERE submission_id = $1
		ORDER BY created_at`,
		submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var feedback []domain.SongFeedback
	for rows.Next() {
		var f domain.SongFeedback
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.RaterID, &f.Verdict, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}
