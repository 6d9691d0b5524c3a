package port

import (
	"context"
	"time"
)

// RateLimitStore persists attempts for sliding-window limits.
type RateLimitStore interface {
	// RecordAndCount trims entries older than window, records at and returns
	// the number of attempts inside the window including the new one.
	RecordAndCount(ctx context.Context, identifier string, at time.Time, window time.Duration) (int, error)
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
