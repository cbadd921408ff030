package account

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/authz"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/httpserver"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/ratelimiter"
)

// RouterOptions wires the router. Policy defaults to authz.DefaultPolicy.
type RouterOptions struct {
	Handler  *Handler
	Verifier auth.TokenVerifier
	Policy   *authz.Policy
	Logger   *slog.Logger
	// Health checks reported by GET /health, keyed by dependency name.
	Health map[string]httpserver.Check
	// Service is returned by GET /.
	Service string
	// Limiter throttles the credential endpoints per client IP when set.
	Limiter *ratelimiter.Bucket
	// TrustProxy keys the limiter on X-Forwarded-For instead of the peer address.
	TrustProxy bool
}

// NewRouter builds the HTTP router for the auth server.
func NewRouter(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	policy := opts.Policy
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	service := opts.Service
	if service == "" {
		service = "authserver"
	}
	h := opts.Handler

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(log),
		auth.Middleware(opts.Verifier, auth.WithMiddlewareLogger(log)),
		capturePrincipal,
		authz.Middleware(policy, authz.WithLogger(log), authz.WithDeniedHandler(deniedHandler)),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorDetail(w, http.StatusNotFound, &ErrorDetail{Code: CodeNotFound, Message: "Resource not found"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(ratelimiter.Middleware(opts.Limiter, ratelimiter.ClientIP(opts.TrustProxy),
					ratelimiter.WithKeyPrefix("auth:"),
					ratelimiter.WithLogger(log),
					ratelimiter.WithLimitedHandler(limitedHandler),
				))
			}
			r.Post("/signup", h.signup)
			r.Post("/register", h.signup)
			r.Post("/signin", h.signin)
		})
		r.Get("/status", h.status)
		r.Get("/me", h.me)
		r.Get("/oauth-info", h.oauthInfo)
	})
	r.Get("/api/user/me", h.me)

	r.Get("/oauth2/authorization/{provider}", h.authorize)
	r.Get("/login/oauth2/code/{provider}", h.callback)

	r.Get("/health", httpserver.HealthHandler(log, 3*time.Second, opts.Health))
	r.Get("/health-check", httpserver.HealthHandler(log, 0, nil))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, map[string]string{"service": service, "status": "running"})
	})

	return r
}
