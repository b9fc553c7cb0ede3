package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/domain"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// --- Mock implementations ---

type mockUserRepo struct {
	getByIDFn        func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	getBySpotifyIDFn func(ctx context.Context, spotifyID string) (*domain.User, error)
	upsertFn         func(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error)
	updateSettingsFn func(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error)
	listIDsFn        func(ctx context.Context) ([]uuid.UUID, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetBySpotifyID(ctx context.Context, spotifyID string) (*domain.User, error) {
	if m.getBySpotifyIDFn != nil {
		return m.getBySpotifyIDFn(ctx, spotifyID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) Upsert(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, spotifyID, username, accessToken, refreshToken, tokenExpiry)
	}
	return &domain.User{ID: uuid.New(), SpotifyID: spotifyID}, nil
}

func (m *mockUserRepo) UpdateSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(ctx, userID, username, email, smsNotifications)
	}
	return &domain.User{ID: userID, VibedropUsername: username, Email: email, SmsNotifications: smsNotifications}, nil
}

func (m *mockUserRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx)
	}
	return nil, nil
}

type mockCircleRepo struct {
	createFn        func(ctx context.Context, name, joinCode string, creatorID uuid.UUID, rule domain.DropRule) (*domain.SoundCircle, error)
	getByIDFn       func(ctx context.Context, circleID uuid.UUID) (*domain.SoundCircle, error)
	getByJoinCodeFn func(ctx context.Context, joinCode string) (*domain.SoundCircle, error)
	getForUserFn    func(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error)
	updateRuleFn    func(ctx context.Context, circleID uuid.UUID, name string, rule domain.DropRule) error
	addMemberFn     func(ctx context.Context, circleID, userID uuid.UUID, isOwner bool) error
	isMemberFn      func(ctx context.Context, circleID, userID uuid.UUID) (bool, error)
	memberCountFn   func(ctx context.Context, circleID uuid.UUID) (int, error)
}

func (m *mockCircleRepo) Create(ctx context.Context, name, joinCode string, creatorID uuid.UUID, rule domain.DropRule) (*domain.SoundCircle, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, joinCode, creatorID, rule)
	}
	return &domain.SoundCircle{ID: uuid.New(), Name: name, JoinCode: joinCode, CreatorID: creatorID, Rule: rule}, nil
}

func (m *mockCircleRepo) GetByID(ctx context.Context, circleID uuid.UUID) (*domain.SoundCircle, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, circleID)
	}
	return nil, domain.ErrCircleNotFound
}

func (m *mockCircleRepo) GetByJoinCode(ctx context.Context, joinCode string) (*domain.SoundCircle, error) {
	if m.getByJoinCodeFn != nil {
		return m.getByJoinCodeFn(ctx, joinCode)
	}
	return nil, domain.ErrCircleNotFound
}

func (m *mockCircleRepo) GetForUser(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error) {
	if m.getForUserFn != nil {
		return m.getForUserFn(ctx, userID)
	}
	return nil, domain.ErrNoMembership
}

func (m *mockCircleRepo) UpdateRule(ctx context.Context, circleID uuid.UUID, name string, rule domain.DropRule) error {
	if m.updateRuleFn != nil {
		return m.updateRuleFn(ctx, circleID, name, rule)
	}
	return nil
}

func (m *mockCircleRepo) AddMember(ctx context.Context, circleID, userID uuid.UUID, isOwner bool) error {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, circleID, userID, isOwner)
	}
	return nil
}

func (m *mockCircleRepo) IsMember(ctx context.Context, circleID, userID uuid.UUID) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, circleID, userID)
	}
	return true, nil
}

func (m *mockCircleRepo) MemberCount(ctx context.Context, circleID uuid.UUID) (int, error) {
	if m.memberCountFn != nil {
		return m.memberCountFn(ctx, circleID)
	}
	return 0, nil
}

type mockSubmissionRepo struct {
	insertFn        func(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string, submittedAt time.Time) (*domain.Submission, error)
	getByIDFn       func(ctx context.Context, submissionID uuid.UUID) (*domain.Submission, error)
	listByCircleFn  func(ctx context.Context, circleID uuid.UUID, since time.Time) ([]domain.Submission, error)
	existsInRangeFn func(ctx context.Context, userID, circleID uuid.UUID, from, to time.Time) (bool, error)
	tallyForUserFn  func(ctx context.Context, userID uuid.UUID, excludeSelf bool) (*domain.FeedbackTally, error)
}

func (m *mockSubmissionRepo) Insert(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string, submittedAt time.Time) (*domain.Submission, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, userID, circleID, spotifyLink, submittedAt)
	}
	return &domain.Submission{ID: uuid.New(), UserID: userID, CircleID: circleID, SpotifyLink: spotifyLink, SubmittedAt: submittedAt}, nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, submissionID uuid.UUID) (*domain.Submission, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, submissionID)
	}
	return nil, domain.ErrSubmissionNotFound
}

func (m *mockSubmissionRepo) ListByCircle(ctx context.Context, circleID uuid.UUID, since time.Time) ([]domain.Submission, error) {
	if m.listByCircleFn != nil {
		return m.listByCircleFn(ctx, circleID, since)
	}
	return nil, nil
}

func (m *mockSubmissionRepo) ExistsInRange(ctx context.Context, userID, circleID uuid.UUID, from, to time.Time) (bool, error) {
	if m.existsInRangeFn != nil {
		return m.existsInRangeFn(ctx, userID, circleID, from, to)
	}
	return false, nil
}

func (m *mockSubmissionRepo) TallyForUser(ctx context.Context, userID uuid.UUID, excludeSelf bool) (*domain.FeedbackTally, error) {
	if m.tallyForUserFn != nil {
		return m.tallyForUserFn(ctx, userID, excludeSelf)
	}
	return &domain.FeedbackTally{UserID: userID}, nil
}

type mockFeedbackRepo struct {
	upsertFn           func(ctx context.Context, submissionID, raterID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error)
	listBySubmissionFn func(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error)
}

func (m *mockFeedbackRepo) Upsert(ctx context.Context, submissionID, raterID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, submissionID, raterID, verdict)
	}
	return &domain.SongFeedback{ID: uuid.New(), SubmissionID: submissionID, RaterID: raterID, Verdict: verdict}, nil
}

func (m *mockFeedbackRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error) {
	if m.listBySubmissionFn != nil {
		return m.listBySubmissionFn(ctx, submissionID)
	}
	return nil, nil
}

type mockSnapshotRepo struct {
	storeFn           func(ctx context.Context, snapshot *domain.DropCredSnapshot, replace bool) error
	latestFn          func(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error)
	latestByVersionFn func(ctx context.Context, version int) ([]domain.LeaderboardEntry, error)
}

func (m *mockSnapshotRepo) Store(ctx context.Context, snapshot *domain.DropCredSnapshot, replace bool) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, snapshot, replace)
	}
	return nil
}

func (m *mockSnapshotRepo) Latest(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID, version)
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *mockSnapshotRepo) LatestByVersion(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	if m.latestByVersionFn != nil {
		return m.latestByVersionFn(ctx, version)
	}
	return nil, nil
}

type mockLeaderboardCache struct {
	getFn        func(ctx context.Context, version int) ([]domain.LeaderboardEntry, error)
	invalidateFn func(ctx context.Context, version int) error
	invalidated  []int
}

func (m *mockLeaderboardCache) Get(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, version)
	}
	return nil, nil
}

func (m *mockLeaderboardCache) Invalidate(ctx context.Context, version int) error {
	m.invalidated = append(m.invalidated, version)
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, version)
	}
	return nil
}

type mockRateLimiter struct {
	allowFn func(ctx context.Context, userID uuid.UUID) (bool, error)
}

func (m *mockRateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	if m.allowFn != nil {
		return m.allowFn(ctx, userID)
	}
	return true, nil
}

type mockExporter struct {
	refreshTokenFn   func(ctx context.Context, refreshToken string) (*spotify.TokenResult, error)
	createPlaylistFn func(ctx context.Context, accessToken, spotifyUserID, name, description string) (*spotify.Playlist, error)
	addTracksFn      func(ctx context.Context, accessToken, playlistID string, trackURIs []string) error
}

func (m *mockExporter) RefreshToken(ctx context.Context, refreshToken string) (*spotify.TokenResult, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, refreshToken)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockExporter) CreatePlaylist(ctx context.Context, accessToken, spotifyUserID, name, description string) (*spotify.Playlist, error) {
	if m.createPlaylistFn != nil {
		return m.createPlaylistFn(ctx, accessToken, spotifyUserID, name, description)
	}
	return &spotify.Playlist{ID: "playlist-1", URL: "https://open.spotify.com/playlist/playlist-1"}, nil
}

func (m *mockExporter) AddTracks(ctx context.Context, accessToken, playlistID string, trackURIs []string) error {
	if m.addTracksFn != nil {
		return m.addTracksFn(ctx, accessToken, playlistID, trackURIs)
	}
	return nil
}
