package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nickhellmer/vibedrop/internal/app"
	"github.com/nickhellmer/vibedrop/internal/config"
	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// --- Mock implementations ---

type mockAppService struct {
	getUserByIDFn           func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	upsertUserFn            func(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error)
	updateAccountFn         func(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error)
	createCircleFn          func(ctx context.Context, creatorID uuid.UUID, name string, rule domain.DropRule) (*domain.SoundCircle, error)
	joinCircleFn            func(ctx context.Context, userID uuid.UUID, joinCode string) (*domain.SoundCircle, error)
	circleForUserFn         func(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error)
	updateCircleRuleFn      func(ctx context.Context, circleID, userID uuid.UUID, name string, rule domain.DropRule) error
	submitDropFn            func(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string) (*domain.Submission, error)
	circleFeedFn            func(ctx context.Context, userID, circleID uuid.UUID) (*app.Feed, error)
	saveFeedbackFn          func(ctx context.Context, raterID, submissionID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error)
	feedbackForSubmissionFn func(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error)
	recomputeDropCredFn     func(ctx context.Context, versions []int, replace bool) (*app.RecomputeSummary, error)
	leaderboardFn           func(ctx context.Context, version int) ([]domain.LeaderboardEntry, error)
	dropCredFn              func(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error)
	exportPlaylistFn        func(ctx context.Context, userID, circleID uuid.UUID) (*app.ExportResult, error)
}

func (m *mockAppService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, userID)
	}
	return &domain.User{ID: userID, VibedropUsername: "testuser"}, nil
}

func (m *mockAppService) UpsertUser(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error) {
	if m.upsertUserFn != nil {
		return m.upsertUserFn(ctx, spotifyID, username, accessToken, refreshToken, tokenExpiry)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) UpdateAccountSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(ctx, userID, username, email, smsNotifications)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) CreateCircle(ctx context.Context, creatorID uuid.UUID, name string, rule domain.DropRule) (*domain.SoundCircle, error) {
	if m.createCircleFn != nil {
		return m.createCircleFn(ctx, creatorID, name, rule)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) JoinCircle(ctx context.Context, userID uuid.UUID, joinCode string) (*domain.SoundCircle, error) {
	if m.joinCircleFn != nil {
		return m.joinCircleFn(ctx, userID, joinCode)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) CircleForUser(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error) {
	if m.circleForUserFn != nil {
		return m.circleForUserFn(ctx, userID)
	}
	return nil, domain.ErrNoMembership
}

func (m *mockAppService) UpdateCircleRule(ctx context.Context, circleID, userID uuid.UUID, name string, rule domain.DropRule) error {
	if m.updateCircleRuleFn != nil {
		return m.updateCircleRuleFn(ctx, circleID, userID, name, rule)
	}
	return nil
}

func (m *mockAppService) SubmitDrop(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string) (*domain.Submission, error) {
	if m.submitDropFn != nil {
		return m.submitDropFn(ctx, userID, circleID, spotifyLink)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) CircleFeed(ctx context.Context, userID, circleID uuid.UUID) (*app.Feed, error) {
	if m.circleFeedFn != nil {
		return m.circleFeedFn(ctx, userID, circleID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) SaveFeedback(ctx context.Context, raterID, submissionID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error) {
	if m.saveFeedbackFn != nil {
		return m.saveFeedbackFn(ctx, raterID, submissionID, verdict)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) FeedbackForSubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error) {
	if m.feedbackForSubmissionFn != nil {
		return m.feedbackForSubmissionFn(ctx, submissionID)
	}
	return nil, nil
}

func (m *mockAppService) RecomputeDropCred(ctx context.Context, versions []int, replace bool) (*app.RecomputeSummary, error) {
	if m.recomputeDropCredFn != nil {
		return m.recomputeDropCredFn(ctx, versions, replace)
	}
	return &app.RecomputeSummary{}, nil
}

func (m *mockAppService) Leaderboard(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	if m.leaderboardFn != nil {
		return m.leaderboardFn(ctx, version)
	}
	return nil, nil
}

func (m *mockAppService) DropCred(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error) {
	if m.dropCredFn != nil {
		return m.dropCredFn(ctx, userID, version)
	}
	return nil, domain.ErrSnapshotNotFound
}

func (m *mockAppService) ExportPlaylist(ctx context.Context, userID, circleID uuid.UUID) (*app.ExportResult, error) {
	if m.exportPlaylistFn != nil {
		return m.exportPlaylistFn(ctx, userID, circleID)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockOAuthClient struct {
	token       *spotify.TokenResult
	profile     *spotify.Profile
	exchangeErr error
	profileErr  error
}

func (m *mockOAuthClient) AuthURL(state string) string {
	return "https://accounts.spotify.com/authorize?client_id=test&state=" + state
}

func (m *mockOAuthClient) ExchangeCode(_ context.Context, _ string) (*spotify.TokenResult, error) {
	return m.token, m.exchangeErr
}

func (m *mockOAuthClient) FetchProfile(_ context.Context, _ string) (*spotify.Profile, error) {
	return m.profile, m.profileErr
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

// --- Test helpers ---

func newTestServer(t *testing.T, appService AppService, opts ...func(*Server)) *Server {
	t.Helper()

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	e := echo.New()
	// Install error middleware for tests to match production behavior
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:         e,
		config:       &config.Config{Port: "8080", ScoringVersion: 4},
		app:          appService,
		oauthClient:  &mockOAuthClient{},
		sessionStore: store,
		startTime:    time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withOAuthClient(oauth spotifyAuthClient) func(*Server) {
	return func(s *Server) {
		s.oauthClient = oauth
	}
}

func withPostgres(pg pinger) func(*Server) {
	return func(s *Server) {
		s.postgres = pg
	}
}

func withRedis(r pinger) func(*Server) {
	return func(s *Server) {
		s.redis = r
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return apperrors.Middleware()(handler)(c)
}

func setSessionUserID(t *testing.T, srv *Server, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID) {
	t.Helper()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyUserID] = userID.String()
	require.NoError(t, session.Save(req, rec))
}

// newAuthedContext builds an echo context for a request that already carries
// a valid session cookie and has userID set, as requireAuth would leave it.
func newAuthedContext(t *testing.T, srv *Server, userID uuid.UUID, method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := srv.echo.NewContext(req, rec)
	c.Set("userID", userID)
	return c, rec
}
