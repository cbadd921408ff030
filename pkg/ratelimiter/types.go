package ratelimiter

import "time"

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Limit     int       // bucket capacity
	Remaining int       // tokens left after this call
	ResetAt   time.Time // next refill
}

// RetryAfter returns how long a denied caller should wait, measured from now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Config describes a token bucket. The defaults allow a burst of 10 sign-in
// attempts per client, then one every 30 seconds.
type Config struct {
	Capacity       int           `env:"AUTH_RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"AUTH_RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"AUTH_RATE_LIMIT_REFILL_INTERVAL" envDefault:"30s"`
}

// Enabled reports whether limiting is configured. A zero capacity turns it off.
func (c Config) Enabled() bool {
	return c.Capacity > 0
}

// idleTTL is how long an untouched bucket takes to refill completely.
func (c Config) idleTTL() time.Duration {
	intervals := (c.Capacity + c.RefillRate - 1) / c.RefillRate
	return time.Duration(intervals+1) * c.RefillInterval
}
