package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow is an in-process sliding log limiter. It admits at most
// limit events per key in any trailing window.
type SlidingWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	events    map[string][]time.Time
	lastPrune time.Time
}

// NewSlidingWindow creates a limiter allowing limit events per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		events: make(map[string][]time.Time),
	}
}

// WithClock replaces the time source. Tests use it to step time.
func (s *SlidingWindow) WithClock(now func() time.Time) *SlidingWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *SlidingWindow) Limit(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)
	s.maybePrune(now, cutoff)

	events := trim(s.events[key], cutoff)
	res := Result{Limit: s.limit}
	if len(events) < s.limit {
		events = append(events, now)
		res.Success = true
		res.Remaining = s.limit - len(events)
	}
	if len(events) > 0 {
		res.Reset = events[0].Add(s.window)
		s.events[key] = events
	} else {
		res.Reset = now
		delete(s.events, key)
	}
	return res, nil
}

// trim drops events at or before cutoff. Events are in time order.
func trim(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && !events[i].After(cutoff) {
		i++
	}
	return events[i:]
}

// maybePrune removes idle keys at most once per window.
func (s *SlidingWindow) maybePrune(now, cutoff time.Time) {
	if now.Sub(s.lastPrune) < s.window {
		return
	}
	s.lastPrune = now
	for key, events := range s.events {
		if len(trim(events, cutoff)) == 0 {
			delete(s.events, key)
		}
	}
}

// keys reports how many keys are tracked.
func (s *SlidingWindow) keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
