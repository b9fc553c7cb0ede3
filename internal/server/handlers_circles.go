package server

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
)

type createCircleRequest struct {
	Name string      `json:"name"`
	Rule ruleRequest `json:"rule"`
}

func (s *Server) handleCreateCircle(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createCircleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	circle, err := s.app.CreateCircle(c.Request().Context(), userID, req.Name, req.Rule.toDomain())
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(201, toCircleResponse(circle))
}

type joinCircleRequest struct {
	JoinCode string `json:"join_code"`
}

func (s *Server) handleJoinCircle(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req joinCircleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	circle, err := s.app.JoinCircle(c.Request().Context(), userID, req.JoinCode)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, toCircleResponse(circle))
}

func (s *Server) handleUpdateCircle(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	circleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid circle ID").WithField("id", c.Param("id"))
	}

	var req createCircleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.UpdateCircleRule(c.Request().Context(), circleID, userID, req.Name, req.Rule.toDomain()); err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

// handleDashboard summarises the caller's circle and its feed.
func (s *Server) handleDashboard(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := s.app.GetUserByID(ctx, userID)
	if err != nil {
		return mapDomainError(err)
	}

	circle, err := s.app.CircleForUser(ctx, userID)
	if errors.Is(err, domain.ErrNoMembership) {
		return c.JSON(200, map[string]any{
			"username": user.VibedropUsername,
			"circle":   nil,
		})
	}
	if err != nil {
		return mapDomainError(err)
	}

	feed, err := s.app.CircleFeed(ctx, userID, circle.ID)
	if err != nil {
		return mapDomainError(err)
	}

	resp := map[string]any{
		"username":      user.VibedropUsername,
		"circle":        toCircleResponse(circle),
		"member_count":  feed.MemberCount,
		"misconfigured": feed.Misconfigured,
	}
	if !feed.Misconfigured {
		resp["next_drop"] = feed.Window.Next
		resp["current"] = toSubmissionResponses(feed.Current)
		resp["previous"] = toSubmissionResponses(feed.Previous)
	}
	return c.JSON(200, resp)
}

func (s *Server) handleCircleFeed(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	circleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid circle ID").WithField("id", c.Param("id"))
	}

	feed, err := s.app.CircleFeed(c.Request().Context(), userID, circleID)
	if err != nil {
		return mapDomainError(err)
	}

	resp := map[string]any{
		"circle":        toCircleResponse(feed.Circle),
		"member_count":  feed.MemberCount,
		"misconfigured": feed.Misconfigured,
	}
	if !feed.Misconfigured {
		resp["next_drop"] = feed.Window.Next
		resp["current"] = toSubmissionResponses(feed.Current)
		resp["previous"] = toSubmissionResponses(feed.Previous)
	}
	return c.JSON(200, resp)
}
