package server

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
)

func (s *Server) versionParam(c echo.Context) (int, error) {
	raw := c.QueryParam("version")
	if raw == "" {
		return s.config.ScoringVersion, nil
	}
	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationError("version must be an integer").WithField("version", raw)
	}
	return version, nil
}

func (s *Server) handleLeaderboard(c echo.Context) error {
	version, err := s.versionParam(c)
	if err != nil {
		return err
	}

	entries, err := s.app.Leaderboard(c.Request().Context(), version)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, map[string]any{
		"version": version,
		"entries": entries,
	})
}

func (s *Server) handleDropCred(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	version, err := s.versionParam(c)
	if err != nil {
		return err
	}

	snapshot, err := s.app.DropCred(c.Request().Context(), userID, version)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, map[string]any{
		"version":     snapshot.FormulaVersion,
		"score":       snapshot.Score,
		"likes":       snapshot.TotalLikes,
		"dislikes":    snapshot.TotalDislikes,
		"possible":    snapshot.TotalPossible,
		"computed_at": snapshot.ComputedAt,
	})
}

type recomputeRequest struct {
	Versions []int `json:"versions"`
	Replace  bool  `json:"replace"`
}

func (s *Server) handleRecompute(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	var req recomputeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	summary, err := s.app.RecomputeDropCred(c.Request().Context(), req.Versions, req.Replace)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, summary)
}
