package cycle

import (
	"time"

	"github.com/nickhellmer/vibedrop/internal/domain"
)

// Bucket identifies which cycle a submission belongs to.
type Bucket int

const (
	// BucketStale submissions predate the second-most-recent drop and are
	// excluded from feedback and playlist export.
	BucketStale Bucket = iota
	// BucketPrevious submissions are open for feedback and eligible for
	// playlist export.
	BucketPrevious
	// BucketCurrent submissions are feedback-closed until the next drop.
	BucketCurrent
)

// Buckets groups a circle's submissions by cycle.
type Buckets struct {
	Current  []domain.Submission
	Previous []domain.Submission
	Stale    []domain.Submission
}

// ClassifyOne places a single timestamp into a cycle bucket. Boundaries are
// half-open [start, end): a submission exactly at a cycle boundary belongs to
// the later cycle.
func ClassifyOne(t time.Time, w Window) Bucket {
	switch {
	case t.Before(w.SecondMostRecent):
		return BucketStale
	case t.Before(w.MostRecent):
		return BucketPrevious
	default:
		return BucketCurrent
	}
}

// Classify buckets every submission in subs against the resolved window.
func Classify(subs []domain.Submission, w Window) Buckets {
	var b Buckets
	for _, s := range subs {
		switch ClassifyOne(s.SubmittedAt, w) {
		case BucketCurrent:
			b.Current = append(b.Current, s)
		case BucketPrevious:
			b.Previous = append(b.Previous, s)
		default:
			b.Stale = append(b.Stale, s)
		}
	}
	return b
}
