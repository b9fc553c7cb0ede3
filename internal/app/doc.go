// Package app provides the application service layer.
//
// Orchestrates use cases: login upserts, circle lifecycle, drop submission,
// feedback, batch Drop Cred scoring, leaderboards, and playlist export.
// Sits between HTTP handlers and domain repositories. Depends on domain
// interfaces, not concrete implementations.
package app
