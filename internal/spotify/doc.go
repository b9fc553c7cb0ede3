// Package spotify implements the Spotify Accounts and Web API client used for
// login and playlist export.
//
// Covers the authorization-code OAuth flow (AuthURL, ExchangeCode,
// RefreshToken), profile lookup, playlist creation, and track link parsing.
package spotify
