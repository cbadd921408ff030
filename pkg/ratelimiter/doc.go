// Package ratelimiter throttles credential endpoints with a token bucket per
// client.
//
//	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(b, ratelimiter.ClientIP(false))).Post("/signin", h)
//
// MemoryStore counts per process; RedisStore runs the same refill logic in a
// Lua script so every instance shares the buckets. Denied requests consume
// nothing, so a client gets its first token back one RefillInterval after the
// bucket ran dry.
//
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected ones also carry Retry-After.
package ratelimiter
