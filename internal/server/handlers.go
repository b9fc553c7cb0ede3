package server

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/scoring"
)

// currentUserID pulls the authenticated user out of the echo context.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalError("invalid user ID in context", nil)
	}
	return userID, nil
}

// mapDomainError converts domain sentinel errors into structured errors so
// the error middleware can pick the right status code. Unknown errors pass
// through and surface as 500s.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError("user not found")
	case errors.Is(err, domain.ErrCircleNotFound):
		return apperrors.NotFoundError("circle not found")
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return apperrors.NotFoundError("submission not found")
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return apperrors.NotFoundError("no drop cred snapshot yet")
	case errors.Is(err, domain.ErrNoMembership):
		return apperrors.NotFoundError("not a member of this circle")
	case errors.Is(err, domain.ErrUsernameTaken):
		return apperrors.ConflictError("username already in use")
	case errors.Is(err, domain.ErrMembershipExists):
		return apperrors.ConflictError("already a member of this circle")
	case errors.Is(err, domain.ErrDuplicateDrop):
		return apperrors.ConflictError("you already dropped a song this cycle")
	case errors.Is(err, domain.ErrJoinCodeTaken):
		return apperrors.ConflictError("join code already in use")
	case errors.Is(err, cycle.ErrNoWindow):
		return apperrors.MisconfiguredError("circle schedule cannot be resolved")
	case errors.Is(err, scoring.ErrUnknownVersion):
		return apperrors.ValidationError("unknown formula version")
	default:
		return err
	}
}

// --- Wire types ---

type ruleRequest struct {
	Frequency  string    `json:"frequency"`
	AnchorDay1 int       `json:"anchor_day_1"`
	AnchorDay2 *int      `json:"anchor_day_2"`
	DropTime   time.Time `json:"drop_time"`
}

func (r ruleRequest) toDomain() domain.DropRule {
	rule := domain.DropRule{
		Frequency:  domain.DropFrequency(r.Frequency),
		AnchorDay1: time.Weekday(r.AnchorDay1),
		DropTime:   r.DropTime,
	}
	if r.AnchorDay2 != nil {
		day := time.Weekday(*r.AnchorDay2)
		rule.AnchorDay2 = &day
	}
	return rule
}

type circleResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	JoinCode   string    `json:"join_code"`
	Frequency  string    `json:"frequency"`
	AnchorDay1 int       `json:"anchor_day_1"`
	AnchorDay2 *int      `json:"anchor_day_2,omitempty"`
	DropTime   time.Time `json:"drop_time"`
}

func toCircleResponse(c *domain.SoundCircle) circleResponse {
	resp := circleResponse{
		ID:         c.ID,
		Name:       c.Name,
		JoinCode:   c.JoinCode,
		Frequency:  string(c.Rule.Frequency),
		AnchorDay1: int(c.Rule.AnchorDay1),
		DropTime:   c.Rule.DropTime,
	}
	if c.Rule.AnchorDay2 != nil {
		day := int(*c.Rule.AnchorDay2)
		resp.AnchorDay2 = &day
	}
	return resp
}

type submissionResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	SpotifyLink string    `json:"spotify_link"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func toSubmissionResponses(subs []domain.Submission) []submissionResponse {
	out := make([]submissionResponse, len(subs))
	for i, s := range subs {
		out[i] = submissionResponse{
			ID:          s.ID,
			UserID:      s.UserID,
			SpotifyLink: s.SpotifyLink,
			SubmittedAt: s.SubmittedAt,
		}
	}
	return out
}
