package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com/v1"
	httpCallTimeout    = 10 * time.Second

	// Scopes needed for login and playlist export.
	oauthScopes = "user-read-email playlist-modify-public playlist-modify-private"
)

// TokenResult holds the result of an OAuth token exchange or refresh.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Profile holds the Spotify user fields VibeDrop cares about.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
}

// Client talks to the Spotify Accounts service and Web API.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	accountsURL  string // configurable for testing
	apiURL       string // configurable for testing
	httpClient   *http.Client
}

// NewClient creates a Spotify client for the given OAuth app credentials.
func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: httpCallTimeout},
	}
}

// AuthURL builds the authorization redirect URL for the login flow.
// state is echoed back by Spotify and must be verified on callback.
func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", oauthScopes)
	q.Set("state", state)
	return c.accountsURL + "/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for access and refresh tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResult, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.redirectURI)
	return c.tokenRequest(ctx, data)
}

// RefreshToken trades a refresh token for a fresh access token.
// Spotify may omit the refresh token in the response; callers should
// keep the old one in that case.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResult, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return c.tokenRequest(ctx, data)
}

func (c *Client) tokenRequest(ctx context.Context, data url.Values) (*TokenResult, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.accountsURL+"/api/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.basicAuth())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify accounts returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &TokenResult{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

func (c *Client) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
}

// FetchProfile returns the authenticated user's Spotify profile.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify user API returned status %d", resp.StatusCode)
	}

	var userResp struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	if userResp.ID == "" {
		return nil, fmt.Errorf("no user data returned")
	}

	return &Profile{
		ID:          userResp.ID,
		DisplayName: userResp.DisplayName,
		Email:       userResp.Email,
	}, nil
}
