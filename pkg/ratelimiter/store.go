package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state. Take must refill the bucket for the time elapsed
// since its last refill, then consume n tokens only if that many are available.
type Store interface {
	Take(ctx context.Context, key string, n int, cfg Config, now time.Time) (Result, error)
	Reset(ctx context.Context, key string) error
}

// refill advances a bucket by the whole intervals elapsed since last. The
// returned time is the start of the current interval, so partial intervals
// are not lost.
func refill(tokens int, last, now time.Time, cfg Config) (int, time.Time) {
	if now.Before(last) {
		return tokens, last
	}
	intervals := int64(now.Sub(last) / cfg.RefillInterval)
	if intervals <= 0 {
		return tokens, last
	}
	// Cap to avoid overflow on buckets idle for a long time.
	full := int64(cfg.Capacity/cfg.RefillRate + 1)
	added := min(intervals, full) * int64(cfg.RefillRate)
	tokens = int(min(int64(tokens)+added, int64(cfg.Capacity)))
	return tokens, last.Add(time.Duration(intervals) * cfg.RefillInterval)
}
