package cycle

import (
	"errors"
	"sort"
	"time"

	"github.com/nickhellmer/vibedrop/internal/domain"
)

// ErrNoWindow signals that the drop window cannot be determined from the
// circle's rule. Callers surface this as a "circle misconfigured" condition,
// never as a crash.
var ErrNoWindow = errors.New("cannot determine drop window")

const (
	scanDaysBack    = 15
	scanDaysForward = 9
)

// Window holds the resolved drop instants around a reference instant.
// All three are absolute (zone-independent) times.
type Window struct {
	Next             time.Time
	MostRecent       time.Time
	SecondMostRecent time.Time
}

// Resolver computes drop windows for circle recurrence rules. All civil
// calendar math happens in the reference zone; the zone never leaks to
// callers, which only see absolute instants.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	return &Resolver{loc: loc}
}

// Resolve returns the next drop instant and the two most recent past drop
// instants for the rule, relative to ref. Next is always strictly after ref.
func (r *Resolver) Resolve(rule domain.DropRule, ref time.Time) (Window, error) {
	if rule.DropTime.IsZero() {
		return Window{}, ErrNoWindow
	}

	switch rule.Frequency {
	case domain.FrequencyDaily:
		return r.resolveDaily(rule, ref), nil
	case domain.FrequencyWeekly:
		return r.resolveAnchored(ref, []time.Weekday{rule.AnchorDay1}, rule.DropTime)
	case domain.FrequencyBiweekly:
		if rule.AnchorDay2 == nil || *rule.AnchorDay2 == rule.AnchorDay1 {
			return Window{}, ErrNoWindow
		}
		return r.resolveAnchored(ref, []time.Weekday{rule.AnchorDay1, *rule.AnchorDay2}, rule.DropTime)
	default:
		return Window{}, ErrNoWindow
	}
}

func (r *Resolver) resolveDaily(rule domain.DropRule, ref time.Time) Window {
	refLocal := ref.In(r.loc)
	today := r.dropInstant(refLocal.Year(), refLocal.Month(), refLocal.Day(), rule.DropTime)

	next := today
	if !ref.Before(today) {
		next = r.addDays(today, 1)
	}

	return Window{
		Next:             next,
		MostRecent:       r.addDays(next, -1),
		SecondMostRecent: r.addDays(next, -2),
	}
}

func (r *Resolver) resolveAnchored(ref time.Time, anchors []time.Weekday, dropTime time.Time) (Window, error) {
	refLocal := ref.In(r.loc)

	candidates := make([]time.Time, 0, len(anchors)*4)
	for offset := -scanDaysBack; offset <= scanDaysForward; offset++ {
		day := refLocal.AddDate(0, 0, offset)
		for _, anchor := range anchors {
			if day.Weekday() == anchor {
				candidates = append(candidates, r.dropInstant(day.Year(), day.Month(), day.Day(), dropTime))
				break
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	for i, candidate := range candidates {
		if candidate.After(ref) {
			if i < 2 {
				return Window{}, ErrNoWindow
			}
			return Window{
				Next:             candidate,
				MostRecent:       candidates[i-1],
				SecondMostRecent: candidates[i-2],
			}, nil
		}
	}
	return Window{}, ErrNoWindow
}

// dropInstant places the rule's civil time-of-day onto a calendar date in the
// reference zone. Going through time.Date keeps the wall-clock time stable
// across daylight-saving transitions.
func (r *Resolver) dropInstant(year int, month time.Month, day int, dropTime time.Time) time.Time {
	civil := dropTime.In(r.loc)
	return time.Date(year, month, day, civil.Hour(), civil.Minute(), civil.Second(), 0, r.loc)
}

// addDays shifts a drop instant by whole calendar days, preserving the civil
// time-of-day across DST boundaries.
func (r *Resolver) addDays(t time.Time, days int) time.Time {
	local := t.In(r.loc)
	shifted := local.AddDate(0, 0, days)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), local.Hour(), local.Minute(), local.Second(), 0, r.loc)
}
