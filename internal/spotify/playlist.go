package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Spotify accepts at most 100 track URIs per add call.
const addTracksBatchSize = 100

// Playlist holds the fields returned when creating a playlist.
type Playlist struct {
	ID  string
	URL string
}

// CreatePlaylist creates a private playlist owned by the given Spotify user.
func (c *Client) CreatePlaylist(ctx context.Context, accessToken, spotifyUserID, name, description string) (*Playlist, error) {
	payload, err := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlist payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/playlists", c.apiURL, url.PathEscape(spotifyUserID))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute playlist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify playlist API returned status %d", resp.StatusCode)
	}

	var playlistResp struct {
		ID           string `json:"id"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&playlistResp); err != nil {
		return nil, fmt.Errorf("failed to decode playlist response: %w", err)
	}

	return &Playlist{ID: playlistResp.ID, URL: playlistResp.ExternalURLs.Spotify}, nil
}

// AddTracks appends track URIs to a playlist, batching per API limits.
func (c *Client) AddTracks(ctx context.Context, accessToken, playlistID string, trackURIs []string) error {
	for start := 0; start < len(trackURIs); start += addTracksBatchSize {
		end := min(start+addTracksBatchSize, len(trackURIs))
		if err := c.addTracksBatch(ctx, accessToken, playlistID, trackURIs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) addTracksBatch(ctx context.Context, accessToken, playlistID string, trackURIs []string) error {
	payload, err := json.Marshal(map[string]any{"uris": trackURIs})
	if err != nil {
		return fmt.Errorf("failed to encode tracks payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks", c.apiURL, url.PathEscape(playlistID))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create tracks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute tracks request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify tracks API returned status %d", resp.StatusCode)
	}
	return nil
}

// TrackURI converts a shared Spotify track link into a track URI.
// Accepts open.spotify.com links (with or without query parameters)
// and already-formed spotify:track: URIs.
func TrackURI(link string) (string, error) {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "spotify:track:") {
		id := strings.TrimPrefix(link, "spotify:track:")
		if id == "" {
			return "", fmt.Errorf("empty track ID in %q", link)
		}
		return link, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid track link %q: %w", link, err)
	}
	if u.Host != "open.spotify.com" {
		return "", fmt.Errorf("unsupported track link host %q", u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Localized links carry a locale segment, e.g. /intl-de/track/<id>.
	if len(parts) == 3 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[0] != "track" || parts[1] == "" {
		return "", fmt.Errorf("not a track link: %q", link)
	}

	return "spotify:track:" + parts[1], nil
}
