package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/domain"
	"github.com/nickhellmer/vibedrop/internal/metrics"
	"github.com/nickhellmer/vibedrop/internal/scoring"
)

// RecomputeSummary reports one batch scoring run.
type RecomputeSummary struct {
	Users    int           `json:"users"`
	Versions []int         `json:"versions"`
	Duration time.Duration `json:"duration"`
}

// RecomputeDropCred recomputes Drop Cred snapshots for every user under the
// requested formula versions. The population mean is computed fresh from the
// run's own tallies. With replace set the run is idempotent: prior snapshots
// for each (user, version) are deleted with the insert. Concurrent calls are
// collapsed into a single run.
func (s *Service) RecomputeDropCred(ctx context.Context, versions []int, replace bool) (*RecomputeSummary, error) {
	if len(versions) == 0 {
		versions = []int{s.scoring.Version}
	}
	for _, v := range versions {
		if _, err := scoring.ForVersion(v); err != nil {
			return nil, err
		}
	}

	result, err, _ := s.recomputeGroup.Do("recompute", func() (any, error) {
		return s.recompute(ctx, versions, replace)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RecomputeSummary), nil
}

func (s *Service) recompute(ctx context.Context, versions []int, replace bool) (*RecomputeSummary, error) {
	start := s.clock.Now()
	defer func() {
		metrics.ScoringRunDuration.Observe(s.clock.Since(start).Seconds())
	}()

	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for scoring: %w", err)
	}
	metrics.ScoringPopulationSize.Set(float64(len(userIDs)))

	tallies := make([]*domain.FeedbackTally, 0, len(userIDs))
	var totalLikes, totalPossible int
	for _, userID := range userIDs {
		tally, err := s.submissions.TallyForUser(ctx, userID, s.scoring.ExcludeSelf)
		if err != nil {
			return nil, fmt.Errorf("failed to tally user %s: %w", userID, err)
		}
		tallies = append(tallies, tally)
		totalLikes += tally.Likes
		totalPossible += tally.Possible
	}

	params := scoring.Params{
		PriorStrength:       s.scoring.PriorStrength,
		PriorMean:           scoring.PopulationMean(totalLikes, totalPossible, s.scoring.PriorMeanFallback),
		ParticipationWeight: s.scoring.ParticipationWeight,
		ParticipationCap:    s.scoring.ParticipationCap,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring parameters: %w", err)
	}

	for _, version := range versions {
		if err := s.recomputeVersion(ctx, version, tallies, params, string(paramsJSON), replace); err != nil {
			metrics.ScoringRunsTotal.WithLabelValues(strconv.Itoa(version), "error").Inc()
			return nil, err
		}
		metrics.ScoringRunsTotal.WithLabelValues(strconv.Itoa(version), "ok").Inc()
	}

	return &RecomputeSummary{
		Users:    len(userIDs),
		Versions: versions,
		Duration: s.clock.Since(start),
	}, nil
}

func (s *Service) recomputeVersion(ctx context.Context, version int, tallies []*domain.FeedbackTally, params scoring.Params, paramsJSON string, replace bool) error {
	results := make([]scoring.Result, len(tallies))
	for i, tally := range tallies {
		in := scoring.Input{
			Likes:       tally.Likes,
			Dislikes:    tally.Dislikes,
			Possible:    tally.Possible,
			Submissions: tally.Submissions,
		}
		result, err := scoring.Compute(in, version, params)
		if err != nil {
			return err
		}
		results[i] = result
	}

	scores := make([]float64, len(results))
	if s.scoring.CalibrationEnabled {
		raws := make([]float64, len(results))
		for i, r := range results {
			raws[i] = r.Raw
		}
		scores = scoring.Calibrate(raws, s.scoring.CalibrationTargetMean, s.scoring.CalibrationTargetSpread)
	} else {
		for i, r := range results {
			scores[i] = r.Score
		}
	}

	computedAt := s.clock.Now()
	for i, tally := range tallies {
		snapshot := &domain.DropCredSnapshot{
			UserID:         tally.UserID,
			FormulaVersion: version,
			ComputedAt:     computedAt,
			TotalLikes:     tally.Likes,
			TotalDislikes:  tally.Dislikes,
			TotalPossible:  tally.Possible,
			Score:          scores[i],
			Parameters:     paramsJSON,
		}
		if err := s.snapshots.Store(ctx, snapshot, replace); err != nil {
			return fmt.Errorf("failed to store snapshot for user %s: %w", tally.UserID, err)
		}
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Invalidate(ctx, version); err != nil {
			slog.Warn("Failed to invalidate leaderboard cache", "version", version, "error", err)
		}
	}
	return nil
}

// Leaderboard returns the latest Drop Cred ranking for a formula version,
// cache-first when Redis is configured.
func (s *Service) Leaderboard(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	if _, err := scoring.ForVersion(version); err != nil {
		return nil, err
	}
	if s.leaderboard != nil {
		return s.leaderboard.Get(ctx, version)
	}
	return s.snapshots.LatestByVersion(ctx, version)
}

// DropCred returns a user's latest snapshot for a formula version.
func (s *Service) DropCred(ctx context.Context, userID uuid.UUID, version int) (*domain.DropCredSnapshot, error) {
	if _, err := scoring.ForVersion(version); err != nil {
		return nil, err
	}
	return s.snapshots.Latest(ctx, userID, version)
}
