// Package metrics defines the Prometheus metrics exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scoring metrics
var (
	// ScoringRunsTotal tracks batch Drop Cred recomputations by formula version and status
	ScoringRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_runs_total",
			Help: "Total batch scoring runs by formula version and status",
		},
		[]string{"version", "status"},
	)

	// ScoringRunDuration tracks batch scoring run latency in seconds
	ScoringRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_run_duration_seconds",
			Help:    "Batch scoring run duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ScoringPopulationSize tracks the number of users covered by the last batch run
	ScoringPopulationSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoring_population_size",
			Help: "Users covered by the most recent batch scoring run",
		},
	)
)

// Cycle resolver metrics
var (
	// ResolverOutcomesTotal tracks window resolutions by outcome (ok / no_window)
	ResolverOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cycle_resolver_outcomes_total",
			Help: "Cycle window resolutions by outcome",
		},
		[]string{"outcome"},
	)
)

// Cache metrics
var (
	// LeaderboardCacheTotal tracks leaderboard cache lookups by result (hit / miss / error)
	LeaderboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"},
	)
)

// Feedback metrics
var (
	// FeedbackSavedTotal tracks saved feedback verdicts by kind
	FeedbackSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_saved_total",
			Help: "Saved feedback verdicts by kind",
		},
		[]string{"verdict"},
	)

	// FeedbackRateLimitedTotal tracks feedback requests rejected by the rate limiter
	FeedbackRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_rate_limited_total",
			Help: "Feedback requests rejected by the rate limiter",
		},
	)
)
