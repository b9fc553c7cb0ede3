package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/domain"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// LeaderboardCache is the Redis layer over snapshot leaderboard queries.
type LeaderboardCache interface {
	Get(ctx context.Context, version int) ([]domain.LeaderboardEntry, error)
	Invalidate(ctx context.Context, version int) error
}

// RateLimiter gates feedback writes per user.
type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PlaylistExporter is the Spotify surface needed for playlist export.
type PlaylistExporter interface {
	RefreshToken(ctx context.Context, refreshToken string) (*spotify.TokenResult, error)
	CreatePlaylist(ctx context.Context, accessToken, spotifyUserID, name, description string) (*spotify.Playlist, error)
	AddTracks(ctx context.Context, accessToken, playlistID string, trackURIs []string) error
}

// ScoringConfig carries the scoring and calibration knobs the service needs.
type ScoringConfig struct {
	Version             int
	ExcludeSelf         bool
	PriorStrength       float64
	PriorMeanFallback   float64
	ParticipationWeight float64
	ParticipationCap    int

	CalibrationEnabled      bool
	CalibrationTargetMean   float64
	CalibrationTargetSpread float64
}

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
type Service struct {
	users       domain.UserRepository
	circles     domain.CircleRepository
	submissions domain.SubmissionRepository
	feedback    domain.FeedbackRepository
	snapshots   domain.SnapshotRepository
	resolver    *cycle.Resolver
	leaderboard LeaderboardCache
	limiter     RateLimiter
	exporter    PlaylistExporter
	clock       clockwork.Clock
	scoring     ScoringConfig

	recomputeGroup singleflight.Group
}

// NewService creates the application layer service.
// leaderboard and limiter may be nil when Redis is not configured; the
// service then falls back to direct snapshot queries and unlimited feedback.
func NewService(
	users domain.UserRepository,
	circles domain.CircleRepository,
	submissions domain.SubmissionRepository,
	feedback domain.FeedbackRepository,
	snapshots domain.SnapshotRepository,
	resolver *cycle.Resolver,
	leaderboard LeaderboardCache,
	limiter RateLimiter,
	exporter PlaylistExporter,
	clock clockwork.Clock,
	scoring ScoringConfig,
) *Service {
	return &Service{
		users:       users,
		circles:     circles,
		submissions: submissions,
		feedback:    feedback,
		snapshots:   snapshots,
		resolver:    resolver,
		leaderboard: leaderboard,
		limiter:     limiter,
		exporter:    exporter,
		clock:       clock,
		scoring:     scoring,
	}
}

// GetUserByID retrieves a user by internal ID.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpsertUser creates or updates a user after a successful Spotify login.
func (s *Service) UpsertUser(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error) {
	return s.users.Upsert(ctx, spotifyID, username, accessToken, refreshToken, tokenExpiry)
}

// UpdateAccountSettings changes the caller's username, email, and SMS opt-in.
// Username and email are normalized to lowercase; an empty value keeps the
// current one. The SMS flag is always written as given.
func (s *Service) UpdateAccountSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		username = user.VibedropUsername
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = user.Email
	}

	return s.users.UpdateSettings(ctx, userID, username, email, smsNotifications)
}
