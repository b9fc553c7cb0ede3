package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nickhellmer/vibedrop/internal/app"
	"github.com/nickhellmer/vibedrop/internal/config"
	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// AppService is the application layer surface the HTTP handlers use.
type AppService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpsertUser(ctx context.Context, spotifyID, username, accessToken, refreshToken string, tokenExpiry time.Time) (*domain.User, error)
	UpdateAccountSettings(ctx context.Context, userID uuid.UUID, username, email string, smsNotifications bool) (*domain.User, error)
	CreateCircle(ctx context.Context, creatorID uuid.UUID, name string, rule domain.DropRule) (*domain.SoundCircle, error)
	JoinCircle(ctx context.Context, userID uuid.UUID, joinCode string) (*domain.SoundCircle, error)
	CircleForUser(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error)
	UpdateCircleRule(ctx context.Context, circleID, userID uuid.UUID, name string, rule domain.DropRule) error
	SubmitDrop(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string) (*domain.Submission, error)
	CircleFeed(ctx context.Context, userID, circleID uuid.UUID) (*app.Feed, error)
	SaveFeedback(ctx context.Context, raterID, submissionID uuid.UUID, verdict domain.Verdict) (*domain.SongFeedback, error)
	FeedbackForSubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.SongFeedback, error)
	RecomputeDropCred(ctx context.Context, versions []int, replace bool) (*app.RecomputeSummary, error)
	Leaderboard(ctx context.Context, version int) ([]domain.LeaderboardEntry, error)
	DropCred(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error)
	ExportPlaylist(ctx context.Context, userID, circleID uuid.UUID) (*app.ExportResult, error)
}

// spotifyAuthClient handles the Spotify OAuth flow for login.
type spotifyAuthClient interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*spotify.TokenResult, error)
	FetchProfile(ctx context.Context, accessToken string) (*spotify.Profile, error)
}

// pinger is the subset of pgxpool used for readiness checks.
type pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          AppService
	oauthClient  spotifyAuthClient
	sessionStore *sessions.CookieStore
	postgres     pinger
	redis        pinger
	startTime    time.Time
}

// NewServer assembles the echo server. postgres and redis are only used for
// readiness checks and may be nil in tests.
func NewServer(cfg *config.Config, appService AppService, oauthClient spotifyAuthClient, postgres, redis pinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLoggerMiddleware())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          appService,
		oauthClient:  oauthClient,
		sessionStore: sessionStore,
		postgres:     postgres,
		redis:        redis,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) csrfMiddleware() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "csrf_token",
		CookiePath:     "/",
		CookieMaxAge:   int(s.config.SessionMaxAge.Seconds()),
		CookieHTTPOnly: true,
		CookieSecure:   s.config.AppEnv == "production",
		CookieSameSite: http.SameSiteStrictMode,
	})
}

func requestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}
