package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Session keys
const (
	sessionName          = "vibedrop-session"
	sessionKeyUserID     = "user_id"
	sessionKeyOAuthState = "oauth_state"

	oauthTimeout = 10 * time.Second
)

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return c.Redirect(302, "/auth/login")
		}

		userID, ok := session.Values[sessionKeyUserID]
		if !ok {
			return c.Redirect(302, "/auth/login")
		}

		userIDStr, ok := userID.(string)
		if !ok {
			return c.Redirect(302, "/auth/login")
		}

		userUUID, err := uuid.Parse(userIDStr)
		if err != nil {
			return c.Redirect(302, "/auth/login")
		}

		c.Set("userID", userUUID)
		return next(c)
	}
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Server) handleLogin(c echo.Context) error {
	state, err := generateOAuthState()
	if err != nil {
		slog.Error("Failed to generate OAuth state", "error", err)
		return c.String(500, "Internal error")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Warn("Failed to get session for OAuth state", "error", err)
	}
	session.Values[sessionKeyOAuthState] = state
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save OAuth state session", "error", err)
		return c.String(500, "Internal error")
	}

	return c.Redirect(302, s.oauthClient.AuthURL(state))
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return c.String(400, "Missing code parameter")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return c.String(400, "Invalid session")
	}
	expectedState, ok := session.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" {
		return c.String(400, "Missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		return c.String(400, "Invalid OAuth state")
	}
	delete(session.Values, sessionKeyOAuthState)

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	token, err := s.oauthClient.ExchangeCode(ctx, code)
	if err != nil {
		slog.Error("Failed to exchange code", "error", err)
		return c.String(502, "Failed to authenticate with Spotify")
	}

	profile, err := s.oauthClient.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		slog.Error("Failed to fetch Spotify profile", "error", err)
		return c.String(502, "Failed to authenticate with Spotify")
	}

	tokenExpiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	user, err := s.app.UpsertUser(ctx, profile.ID, profile.DisplayName, token.AccessToken, token.RefreshToken, tokenExpiry)
	if err != nil {
		slog.Error("Failed to save user", "error", err)
		return c.String(500, "Failed to save user")
	}

	session.Values[sessionKeyUserID] = user.ID.String()
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
		return c.String(500, "Failed to save session")
	}

	return c.Redirect(302, "/dashboard")
}

func (s *Server) handleLogout(c echo.Context) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Warn("Failed to get session during logout", "error", err)
		session, err = s.sessionStore.New(c.Request(), sessionName)
		if err != nil {
			slog.Error("Failed to create new session during logout", "error", err)
		}
	}
	session.Options.MaxAge = -1

	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to save logout session", "error", err)
		return c.String(500, "Failed to logout due to session error. Please try again or clear your browser cookies.")
	}

	return c.Redirect(302, "/auth/login")
}
