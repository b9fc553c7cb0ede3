package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
)

type submitDropRequest struct {
	CircleID    uuid.UUID `json:"circle_id"`
	SpotifyLink string    `json:"spotify_link"`
}

func (s *Server) handleSubmitDrop(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req submitDropRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.CircleID == uuid.Nil {
		return apperrors.ValidationError("circle_id is required")
	}

	submission, err := s.app.SubmitDrop(c.Request().Context(), userID, req.CircleID, req.SpotifyLink)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(201, submissionResponse{
		ID:          submission.ID,
		UserID:      submission.UserID,
		SpotifyLink: submission.SpotifyLink,
		SubmittedAt: submission.SubmittedAt,
	})
}

type saveFeedbackRequest struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Verdict      string    `json:"verdict"`
}

func (s *Server) handleSaveFeedback(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req saveFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.SubmissionID == uuid.Nil {
		return apperrors.ValidationError("submission_id is required")
	}

	feedback, err := s.app.SaveFeedback(c.Request().Context(), userID, req.SubmissionID, domain.Verdict(req.Verdict))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, map[string]any{
		"id":      feedback.ID,
		"verdict": feedback.Verdict,
	})
}

func (s *Server) handleListFeedback(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}

	submissionID, err := uuid.Parse(c.Param("submission_id"))
	if err != nil {
		return apperrors.ValidationError("invalid submission ID").WithField("submission_id", c.Param("submission_id"))
	}

	feedback, err := s.app.FeedbackForSubmission(c.Request().Context(), submissionID)
	if err != nil {
		return mapDomainError(err)
	}

	out := make([]map[string]any, len(feedback))
	for i, f := range feedback {
		out[i] = map[string]any{
			"rater_id": f.RaterID,
			"verdict":  f.Verdict,
		}
	}
	return c.JSON(200, out)
}

func (s *Server) handleExportPlaylist(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		CircleID uuid.UUID `json:"circle_id"`
	}
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.CircleID == uuid.Nil {
		return apperrors.ValidationError("circle_id is required")
	}

	result, err := s.app.ExportPlaylist(c.Request().Context(), userID, req.CircleID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(201, result)
}
