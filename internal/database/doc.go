// Package database implements PostgreSQL-backed repositories over pgx.
//
// Provides UserRepo, CircleRepo, SubmissionRepo, FeedbackRepo, and
// SnapshotRepo, plus pool setup and idempotent startup migrations. Row-level
// errors map to domain sentinel errors so callers never import pgx.
package database
