package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/metrics"
)

// SaveFeedback records a like/dislike verdict on a previous-cycle submission.
// Re-rating overwrites the earlier verdict. Only submissions in the previous
// cycle are open for feedback: the current cycle is still collecting drops
// and anything older is closed.
func (s *Service) SaveFeedback(ctx context.Context, raterID, submissionID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error) {
	if verdict != domain.VerdictLike && verdict != domain.VerdictDislike {
		return nil, apperrors.ValidationError("verdict must be like or dislike").
			WithField("verdict", string(verdict))
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.UserID == raterID {
		return nil, apperrors.ValidationError("cannot rate your own drop")
	}
	if err := s.requireMembership(ctx, submission.CircleID, raterID); err != nil {
		return nil, err
	}

	circle, err := s.circles.GetByID(ctx, submission.CircleID)
	if err != nil {
		return nil, err
	}
	window, err := s.resolveWindow(circle.Rule)
	if err != nil {
		return nil, err
	}
	if cycle.ClassifyOne(submission.SubmittedAt, window) != cycle.BucketPrevious {
		return nil, apperrors.ValidationError("submission is not open for feedback").
			WithField("submission_id", submissionID.String())
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, raterID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			metrics.FeedbackRateLimitedTotal.Inc()
			return nil, apperrors.RateLimitedError("too many verdicts, slow down")
		}
	}

	feedback, err := s.feedback.Upsert(ctx, submissionID, raterID, verdict)
	if err != nil {
		return nil, err
	}
	metrics.FeedbackSavedTotal.WithLabelValues(string(verdict)).Inc()
	return feedback, nil
}

// FeedbackForSubmission lists all verdicts recorded on a submission.
func (s *Service) FeedbackForSubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error) {
	return s.feedback.ListBySubmission(ctx, submissionID)
}
