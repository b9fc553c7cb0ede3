package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// FeedbackRateLimiter implements fixed-window rate limiting for feedback writes.
// Each user gets at most `limit` verdicts per window.
type FeedbackRateLimiter struct {
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

// NewFeedbackRateLimiter creates a new feedback rate limiter.
// limit: maximum verdicts per window
// window: fixed window duration
func NewFeedbackRateLimiter(rdb *goredis.Client, limit int, window time.Duration) *FeedbackRateLimiter {
	return &FeedbackRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow checks whether the user may record another verdict.
// Returns true if allowed (slot consumed), false if rate limited.
func (f *FeedbackRateLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := fmt.Sprintf("rate_limit:feedback:%s", userID)

	// ExpireNX only arms the TTL when the key has none, so the window runs
	// from the first verdict and later attempts cannot keep it alive.
	pipe := f.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, f.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return incr.Val() <= int64(f.limit), nil
}
