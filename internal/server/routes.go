package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	csrf := s.csrfMiddleware()

	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Root - redirect to dashboard
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(302, "/dashboard")
	})

	// Auth routes (logout requires CSRF, others don't)
	s.echo.GET("/auth/login", s.handleLogin)
	s.echo.GET("/auth/callback", s.handleOAuthCallback)
	s.echo.POST("/auth/logout", s.handleLogout, s.requireAuth, csrf)

	// Dashboard and account settings (authenticated)
	s.echo.GET("/dashboard", s.handleDashboard, s.requireAuth)
	s.echo.GET("/account", s.handleGetAccount, s.requireAuth)
	s.echo.PUT("/account", s.handleUpdateAccount, s.requireAuth, csrf)

	// Circles (mutations CSRF protected)
	s.echo.POST("/circles", s.handleCreateCircle, s.requireAuth, csrf)
	s.echo.POST("/circles/join", s.handleJoinCircle, s.requireAuth, csrf)
	s.echo.PUT("/circles/:id", s.handleUpdateCircle, s.requireAuth, csrf)
	s.echo.GET("/circles/:id/feed", s.handleCircleFeed, s.requireAuth)

	// Drops and feedback
	s.echo.POST("/drops", s.handleSubmitDrop, s.requireAuth, csrf)
	s.echo.POST("/feedback", s.handleSaveFeedback, s.requireAuth, csrf)
	s.echo.GET("/feedback/:submission_id", s.handleListFeedback, s.requireAuth)

	// Scoring
	s.echo.GET("/leaderboard", s.handleLeaderboard, s.requireAuth)
	s.echo.GET("/dropcred", s.handleDropCred, s.requireAuth)
	s.echo.POST("/admin/recompute", s.handleRecompute, s.requireAuth, csrf)

	// Playlist export
	s.echo.POST("/export/playlist", s.handleExportPlaylist, s.requireAuth, csrf)
}
