package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// Tokens within this margin of expiry are refreshed before use.
const tokenExpiryMargin = 60 * time.Second

// ExportResult describes a finished playlist export.
type ExportResult struct {
	PlaylistID  string `json:"playlist_id"`
	PlaylistURL string `json:"playlist_url"`
	Tracks      int    `json:"tracks"`
}

// ExportPlaylist collects the previous cycle's drops into a new private
// Spotify playlist on the caller's account.
func (s *Service) ExportPlaylist(ctx context.Context, userID, circleID uuid.UUID) (*ExportResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	feed, err := s.CircleFeed(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if feed.Misconfigured {
		return nil, apperrors.MisconfiguredError("circle schedule cannot be resolved").
			WithField("circle_id", circleID.String())
	}

	uris := trackURIs(feed.Previous)
	if len(uris) == 0 {
		return nil, apperrors.ValidationError("no drops in the previous cycle to export")
	}

	accessToken, err := s.ensureValidToken(ctx, user)
	if err != nil {
		return nil, apperrors.ExternalError("spotify token refresh failed", err)
	}

	name := fmt.Sprintf("VibeDrop: %s", feed.Circle.Name)
	description := fmt.Sprintf("Drops from the %s cycle", feed.Window.MostRecent.Format("Jan 2, 2006"))

	playlist, err := s.exporter.CreatePlaylist(ctx, accessToken, user.SpotifyID, name, description)
	if err != nil {
		return nil, apperrors.ExternalError("spotify playlist creation failed", err)
	}
	if err := s.exporter.AddTracks(ctx, accessToken, playlist.ID, uris); err != nil {
		return nil, apperrors.ExternalError("spotify track add failed", err)
	}

	return &ExportResult{
		PlaylistID:  playlist.ID,
		PlaylistURL: playlist.URL,
		Tracks:      len(uris),
	}, nil
}

// ensureValidToken refreshes the user's Spotify access token when it is
// expired or about to expire, persisting the rotated tokens.
func (s *Service) ensureValidToken(ctx context.Context, user *domain.User) (string, error) {
	if s.clock.Now().Add(tokenExpiryMargin).Before(user.TokenExpiry) {
		return user.AccessToken, nil
	}

	result, err := s.exporter.RefreshToken(ctx, user.RefreshToken)
	if err != nil {
		return "", err
	}

	refreshToken := result.RefreshToken
	if refreshToken == "" {
		refreshToken = user.RefreshToken
	}
	expiry := s.clock.Now().Add(time.Duration(result.ExpiresIn) * time.Second)

	if _, err := s.users.Upsert(ctx, user.SpotifyID, user.VibedropUsername, result.AccessToken, refreshToken, expiry); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

func trackURIs(subs []domain.Submission) []string {
	uris := make([]string, 0, len(subs))
	for _, sub := range subs {
		uri, err := spotify.TrackURI(sub.SpotifyLink)
		if err != nil {
			slog.Warn("Skipping unparsable track link", "submission_id", sub.ID.String(), "error", err)
			continue
		}
		uris = append(uris, uri)
	}
	return uris
}
