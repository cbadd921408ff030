package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/oauth"
)

// UserFinder loads accounts for the current-user endpoints. auth.Store implements it.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
}

// Deps are the services the handlers delegate to. Reconciler and Providers may
// be nil when no OAuth provider is configured.
type Deps struct {
	Registrar  *auth.Registrar
	Sessions   *auth.Sessions
	Users      UserFinder
	Reconciler *auth.Reconciler
	Providers  *oauth.Registry
}

// Handler serves the account endpoints.
type Handler struct {
	deps        Deps
	logger      *slog.Logger
	frontendURL string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithFrontendRedirectURL sets where OAuth callbacks send the browser with
// ?token= or ?error=.
func WithFrontendRedirectURL(u string) Option {
	return func(h *Handler) {
		if u != "" {
			h.frontendURL = u
		}
	}
}

// NewHandler returns the account handlers over deps.
func NewHandler(deps Deps, opts ...Option) *Handler {
	h := &Handler{
		deps:        deps,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		frontendURL: "http://localhost:3000/oauth2/redirect",
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("account"))
	return h
}

// SignInRequest is the body of POST /api/auth/signin. Username may hold an email.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse is returned on successful sign-in.
type SignInResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"`
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Roles     []string  `json:"roles"`
}

// StatusResponse reports who the caller is authenticated as.
type StatusResponse struct {
	Authenticated bool     `json:"authenticated"`
	Subject       string   `json:"subject,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.deps.Registrar.Register(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, messageResponse{Message: "User registered successfully"})
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.deps.Sessions.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u := session.User
	h.logger.InfoContext(r.Context(), "user signed in", logger.UserID(u.ID))
	writeData(w, SignInResponse{
		Token:     session.Token,
		Type:      "Bearer",
		ExpiresAt: session.ExpiresAt,
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.Roles,
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeData(w, StatusResponse{})
		return
	}
	writeData(w, StatusResponse{Authenticated: true, Subject: p.Subject, Roles: p.Roles})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.fail(w, r, auth.ErrUnauthenticated)
		return
	}

	u, err := h.deps.Users.FindByEmail(r.Context(), auth.NormalizeEmail(p.Subject))
	if errors.Is(err, auth.ErrUserNotFound) {
		u, err = h.deps.Users.FindByUsername(r.Context(), p.Subject)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, u)
}

// fail writes the envelope for err. Server-side failures are logged at Error,
// client mistakes at Debug.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorDetail(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", logger.Status(status), logger.Error(err))
	} else {
		h.logger.DebugContext(r.Context(), "request rejected", slog.String("code", detail.Code), logger.Error(err))
	}
	writeErrorDetail(w, status, detail)
}
