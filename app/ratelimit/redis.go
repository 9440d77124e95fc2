package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript keeps one sorted set per key, scored by event time in
// milliseconds. It returns {allowed, remaining, reset_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	count = count + 1
	allowed = 1
end

local reset = now
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {allowed, limit - count, reset}
`)

// RedisLimiter shares sliding-window counters across instances through
// Redis.
type RedisLimiter struct {
	client redis.Scripter
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a limiter allowing limit events per window,
// storing counters under prefix.
func NewRedisLimiter(client redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		now:    time.Now,
	}
}

// WithClock replaces the time source used to score events.
func (l *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	l.now = now
	return l
}

func (l *RedisLimiter) Limit(ctx context.Context, key string) (Result, error) {
	now := l.now()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	vals, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		now.UnixMilli(), l.window.Milliseconds(), l.limit, member,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit %s: unexpected reply %v", key, vals)
	}

	remaining := int(vals[1])
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Success:   vals[0] == 1,
		Limit:     l.limit,
		Remaining: remaining,
		Reset:     time.UnixMilli(vals[2]),
	}, nil
}
