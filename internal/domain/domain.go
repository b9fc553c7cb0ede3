package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Model types ---

type User struct {
	ID               uuid.UUID `db:"id"`
	SpotifyID        string    `db:"spotify_id"`
	VibedropUsername string    `db:"vibedrop_username"`
	Email            string    `db:"email"`
	SmsNotifications bool      `db:"sms_notifications"`
	AccessToken      string    `db:"access_token"`
	RefreshToken     string    `db:"refresh_token"`
	TokenExpiry      time.Time `db:"token_expiry"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// DropFrequency is how often a circle runs a drop cycle.
type DropFrequency string

const (
	FrequencyDaily    DropFrequency = "daily"
	FrequencyWeekly   DropFrequency = "weekly"
	FrequencyBiweekly DropFrequency = "biweekly"
)

// DropRule is a circle's recurrence configuration. DropTime is an absolute
// instant; its civil time-of-day in the product's reference zone defines when
// drops happen. AnchorDay2 is only set for biweekly circles.
type DropRule struct {
	Frequency  DropFrequency `db:"drop_frequency"`
	AnchorDay1 time.Weekday  `db:"anchor_day_1"`
	AnchorDay2 *time.Weekday `db:"anchor_day_2"`
	DropTime   time.Time     `db:"drop_time"`
}

type SoundCircle struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	JoinCode  string    `db:"join_code"`
	CreatorID uuid.UUID `db:"creator_id"`
	Rule      DropRule
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type CircleMembership struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	CircleID uuid.UUID `db:"circle_id"`
	IsOwner  bool      `db:"is_owner"`
	JoinedAt time.Time `db:"joined_at"`
}

type Submission struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	CircleID    uuid.UUID `db:"circle_id"`
	SpotifyLink string    `db:"spotify_link"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// Verdict is a rater's reaction to a submission.
type Verdict string

const (
	VerdictLike    Verdict = "like"
	VerdictDislike Verdict = "dislike"
)

type SongFeedback struct {
	ID           uuid.UUID `db:"id"`
	SubmissionID uuid.UUID `db:"submission_id"`
	RaterID      uuid.UUID `db:"rater_id"`
	Verdict      Verdict   `db:"verdict"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// DropCredSnapshot is an immutable record of one scoring run for one user.
type DropCredSnapshot struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	FormulaVersion int       `db:"formula_version"`
	ComputedAt     time.Time `db:"computed_at"`
	TotalLikes     int       `db:"total_likes"`
	TotalDislikes  int       `db:"total_dislikes"`
	TotalPossible  int       `db:"total_possible"`
	Score          float64   `db:"score"`
	Parameters     string    `db:"parameters"`
}

// FeedbackTally aggregates everything the scorer needs to know about one
// user: feedback received across all their submissions, plus the "possible"
// denominator (sum of circle sizes at each of their submissions).
type FeedbackTally struct {
	UserID      uuid.UUID
	Likes       int
	Dislikes    int
	Possible    int
	Submissions int
}

// LeaderboardEntry is one row of the Drop Cred leaderboard.
type LeaderboardEntry struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}

// --- Interfaces ---

// UserRepository abstracts user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetBySpotifyID(ctx context.Context, spotifyID string) (*User, error)
	Upsert(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*User, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CircleRepository abstracts sound circle persistence.
type CircleRepository interface {
	Create(ctx context.Context, name, joinCode string, creatorID uuid.UUID, rule DropRule) (*SoundCircle, error)
	GetByID(ctx context.Context, circleID uuid.UUID) (*SoundCircle, error)
	GetByJoinCode(ctx context.Context, joinCode string) (*SoundCircle, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*SoundCircle, error)
	UpdateRule(ctx context.Context, circleID uuid.UUID, name string, rule DropRule) error
	AddMember(ctx context.Context, circleID, userID uuid.UUID, isOwner bool) error
	IsMember(ctx context.Context, circleID, userID uuid.UUID) (bool, error)
	MemberCount(ctx context.Context, circleID uuid.UUID) (int, error)
}

// SubmissionRepository abstracts drop persistence and scoring aggregates.
type SubmissionRepository interface {
	Insert(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string, submittedAt time.Time) (*Submission, error)
	GetByID(ctx context.Context, submissionID uuid.UUID) (*Submission, error)
	ListByCircle(ctx context.Context, circleID uuid.UUID, since time.Time) ([]Submission, error)
	ExistsInRange(ctx context.Context, userID, circleID uuid.UUID, from, to time.Time) (bool, error)
	// TallyForUser aggregates received feedback and the possible-vote
	// denominator for one user. excludeSelf removes the submitter's own
	// seat from each submission's circle size.
	TallyForUser(ctx context.Context, userID uuid.UUID, excludeSelf bool) (*FeedbackTally, error)
}

// FeedbackRepository abstracts like/dislike persistence.
type FeedbackRepository interface {
	// Upsert records a verdict, overwriting any prior verdict by the same
	// rater on the same submission.
	Upsert(ctx context.Context, submissionID, raterID uuid.UUID, verdict Verdict) (*SongFeedback, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]SongFeedback, error)
}

// SnapshotRepository abstracts Drop Cred snapshot persistence.
type SnapshotRepository interface {
	// Store persists a snapshot. With replace set, existing lifetime rows
	// for the same (user, version) are deleted in the same transaction.
	Store(ctx context.Context, snapshot *DropCredSnapshot, replace bool) error
	Latest(ctx context.Context, userID uuid.UUID, version int) (*DropCredSnapshot, error)
	LatestByVersion(ctx context.Context, version int) ([]LeaderboardEntry, error)
}
