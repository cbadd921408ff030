package ratelimiter

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// KeyFunc extracts the bucket key from a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// LimitedHandler writes the response for a rejected request.
type LimitedHandler func(w http.ResponseWriter, r *http.Request, res Result)

type middlewareConfig struct {
	logger  *slog.Logger
	limited LimitedHandler
	prefix  string
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithLogger sets the middleware logger.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimitedHandler replaces the plain-text 429 response.
func WithLimitedHandler(h LimitedHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.limited = h
		}
	}
}

// WithKeyPrefix namespaces keys so several routes can share one store.
func WithKeyPrefix(prefix string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.prefix = prefix
	}
}

// Middleware limits requests per key and sets the X-RateLimit-* headers.
// Store failures are logged and the request is let through.
func Middleware(b *Bucket, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		limited: func(w http.ResponseWriter, _ *http.Request, _ Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger.With(logger.Component("ratelimiter"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), cfg.prefix+key)
			if err != nil {
				log.WarnContext(r.Context(), "rate limit check failed, allowing request", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := res.RetryAfter(b.now())
				h.Set("Retry-After", strconv.Itoa(int((retry+time.Second-1)/time.Second)))
				log.WarnContext(r.Context(), "rate limit exceeded", logger.Route(r.URL.Path))
				cfg.limited(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
