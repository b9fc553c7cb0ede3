// Package domain defines the core domain types and interfaces.
//
// This package contains the VibeDrop entities (users, sound circles,
// submissions, feedback, Drop Cred snapshots) plus the repository contracts
// the rest of the application depends on. No implementation code - just
// contracts. Prevents circular imports by keeping interfaces on the consumer
// side.
package domain
