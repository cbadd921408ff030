package auth

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/jwt"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// TokenVerifier checks a session token. *jwt.Service implements it.
type TokenVerifier interface {
	Verify(token string, now time.Time) (jwt.Claims, error)
}

type middlewareConfig struct {
	logger *slog.Logger
	now    func() time.Time
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithMiddlewareLogger sets the logger used for rejected tokens.
func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMiddlewareClock overrides the clock used for expiry checks.
func WithMiddlewareClock(now func() time.Time) MiddlewareOption {
	return func(c *middlewareConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Middleware attaches a Principal to requests carrying a valid bearer token.
//
// It never rejects a request: a missing, malformed or invalid token leaves the
// request anonymous, and the authorization layer decides whether that is allowed.
func Middleware(verifier TokenVerifier, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger.With(logger.Component("auth_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := jwt.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(token, cfg.now())
			if err != nil {
				log.DebugContext(r.Context(), "bearer token rejected", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{Subject: claims.Subject, Roles: claims.Roles})
			ctx = jwt.SetToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
