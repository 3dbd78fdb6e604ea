package ratelimit

import (
	"context"
	"math"
	"time"
)

const (
	DefaultLimit  = 2
	DefaultWindow = 60 * time.Second
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed           bool `json:"allowed"`
	RetryAfterSeconds int  `json:"retry_after_seconds,omitempty"`
}

// Limiter admits or rejects a run for a caller. Implementations never block
// and never fail; any backend problem must still produce a Decision.
type Limiter interface {
	Admit(ctx context.Context, callerID string) Decision
}

// windowStart aligns now to the fixed window it belongs to.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

// retryAfter is the whole seconds until the current window closes, at least 1.
func retryAfter(now time.Time, window time.Duration) int {
	end := windowStart(now, window).Add(window)
	secs := int(math.Ceil(end.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return limit, window
}
