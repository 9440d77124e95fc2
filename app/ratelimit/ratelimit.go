// Package ratelimit caps how many operations a key may perform within a
// trailing time window.
package ratelimit

import (
	"context"
	"time"
)

// DefaultWindow is the trailing window for post creation quotas.
const DefaultWindow = time.Minute

// Result is the outcome of one Limit call.
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	// Reset is when the oldest counted event leaves the window.
	Reset time.Time
}

// Limiter records an attempt for key and reports whether it is allowed.
// Implementations count only allowed attempts.
type Limiter interface {
	Limit(ctx context.Context, key string) (Result, error)
}
