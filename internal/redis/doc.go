// Package redis implements Redis-backed caching and rate limiting.
//
// Provides LeaderboardCache (read-through leaderboard caching over Postgres
// snapshots) and FeedbackRateLimiter (fixed-window per-user feedback limiting).
package redis
