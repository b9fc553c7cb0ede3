// Package server implements the HTTP server using Echo framework.
//
// Routes: auth (Spotify OAuth), dashboard (JSON summary), account settings,
// circles, drops, feedback, leaderboard, playlist export, admin recompute,
// health, metrics. Handlers split by domain: handlers_auth.go,
// handlers_account.go, handlers_circles.go, handlers_drops.go,
// handlers_scoring.go, handlers_health.go.
package server
