package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
)

type accountResponse struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	SmsNotifications bool   `json:"sms_notifications"`
}

func toAccountResponse(u *domain.User) accountResponse {
	return accountResponse{
		Username:         u.VibedropUsername,
		Email:            u.Email,
		SmsNotifications: u.SmsNotifications,
	}
}

func (s *Server) handleGetAccount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := s.app.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, toAccountResponse(user))
}

type updateAccountRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	SmsNotifications bool   `json:"sms_notifications"`
}

func (s *Server) handleUpdateAccount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	user, err := s.app.UpdateAccountSettings(c.Request().Context(), userID, req.Username, req.Email, req.SmsNotifications)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(200, toAccountResponse(user))
}
