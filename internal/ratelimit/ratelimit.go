// Package ratelimit provides fixed-window request limiting behind a small
// interface with an in-memory implementation for single-instance deployments
// and a Redis implementation for sharing the budget across instances.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a request identified by key fits in the current
// window. Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}
