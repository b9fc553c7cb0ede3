package app

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/cycle"
	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
	"github.com/nickhellmer/vibedrop/internal/metrics"
	"github.com/nickhellmer/vibedrop/internal/spotify"
)

// Feed is a circle's dashboard view: the resolved window plus the current and
// previous cycle's submissions. Misconfigured is set when the circle's rule
// cannot resolve to a window; the circle then accepts no drops or feedback
// until the owner fixes the schedule.
type Feed struct {
	Circle        *domain.SoundCircle
	MemberCount   int
	Window        cycle.Window
	Misconfigured bool
	Current       []domain.Submission
	Previous      []domain.Submission
}

// SubmitDrop records one submission for the current cycle. Each member drops
// at most once per cycle; a second attempt returns ErrDuplicateDrop.
func (s *Service) SubmitDrop(ctx context.Context, userID, circleID uuid.UUID, spotifyLink string) (*domain.Submission, error) {
	if _, err := spotify.TrackURI(spotifyLink); err != nil {
		return nil, apperrors.ValidationError("not a valid Spotify track link").
			WithField("spotify_link", spotifyLink)
	}

	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, circleID, userID); err != nil {
		return nil, err
	}

	window, err := s.resolveWindow(circle.Rule)
	if err != nil {
		return nil, err
	}

	// Current cycle is [MostRecent, Next)
	exists, err := s.submissions.ExistsInRange(ctx, userID, circleID, window.MostRecent, window.Next)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateDrop
	}

	return s.submissions.Insert(ctx, userID, circleID, spotifyLink, s.clock.Now())
}

// CircleFeed resolves the circle's window and buckets its submissions.
// An unresolvable rule yields a misconfigured feed rather than an error so
// the dashboard can render a fix-your-schedule state.
func (s *Service) CircleFeed(ctx context.Context, userID, circleID uuid.UUID) (*Feed, error) {
	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, circleID, userID); err != nil {
		return nil, err
	}

	members, err := s.circles.MemberCount(ctx, circleID)
	if err != nil {
		return nil, err
	}

	window, err := s.resolveWindow(circle.Rule)
	if errors.Is(err, cycle.ErrNoWindow) {
		return &Feed{Circle: circle, MemberCount: members, Misconfigured: true}, nil
	}
	if err != nil {
		return nil, err
	}

	subs, err := s.submissions.ListByCircle(ctx, circleID, window.SecondMostRecent)
	if err != nil {
		return nil, err
	}

	buckets := cycle.Classify(subs, window)
	return &Feed{
		Circle:      circle,
		MemberCount: members,
		Window:      window,
		Current:     buckets.Current,
		Previous:    buckets.Previous,
	}, nil
}

func (s *Service) requireMembership(ctx context.Context, circleID, userID uuid.UUID) error {
	member, err := s.circles.IsMember(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if !member {
		return domain.ErrNoMembership
	}
	return nil
}

func (s *Service) resolveWindow(rule domain.DropRule) (cycle.Window, error) {
	window, err := s.resolver.Resolve(rule, s.clock.Now())
	if errors.Is(err, cycle.ErrNoWindow) {
		metrics.ResolverOutcomesTotal.WithLabelValues("no_window").Inc()
		return cycle.Window{}, err
	}
	if err != nil {
		return cycle.Window{}, err
	}
	metrics.ResolverOutcomesTotal.WithLabelValues("ok").Inc()
	return window, nil
}
