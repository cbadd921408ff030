package authz

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// DeniedHandler writes the response for a rejected request. d is Unauthenticated or Forbidden.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, d Decision)

type middlewareConfig struct {
	logger *slog.Logger
	denied DeniedHandler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithLogger sets the logger used for denied requests.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDeniedHandler replaces the default JSON error response.
func WithDeniedHandler(h DeniedHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.denied = h
		}
	}
}

// Middleware enforces policy using the principal set by auth.Middleware.
// Denied requests end here with 401 or 403.
func Middleware(policy *Policy, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		denied: WriteDenied,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger.With(logger.Component("authz"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal *auth.Principal
			if p, ok := auth.PrincipalFromContext(r.Context()); ok {
				principal = &p
			}

			d := policy.Evaluate(r.Method, r.URL.Path, principal)
			if d == Allow {
				next.ServeHTTP(w, r)
				return
			}

			attrs := []any{
				slog.String("decision", d.String()),
				slog.String("method", r.Method),
				logger.Route(r.URL.Path),
			}
			if principal != nil {
				attrs = append(attrs, logger.Subject(principal.Subject))
			}
			log.WarnContext(r.Context(), "request denied", attrs...)

			cfg.denied(w, r, d)
		})
	}
}

// WriteDenied writes {"error":{"code","message"}} with 401 or 403.
func WriteDenied(w http.ResponseWriter, _ *http.Request, d Decision) {
	status, message := http.StatusForbidden, "Access denied"
	if d == Unauthenticated {
		status, message = http.StatusUnauthorized, "Authentication required"
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    d.String(),
			"message": message,
		},
	})
}
