package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/secure/precis"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

const (
	defaultMaxUsernameAttempts = 50
	fallbackUsername           = "user"
)

// Reconciler maps an external identity provider login onto a local account.
//
// Resolution order:
//  1. an account already linked to (provider, providerID) is returned, with its
//     email and display name refreshed when the provider reports new values;
//  2. otherwise an account with the same email is linked to the provider, replacing
//     any earlier link (one provider per account);
//  3. otherwise a new account is created with a username derived from the email.
//
// Step 2 merges a local password account with the external identity on email alone.
type Reconciler struct {
	store       Store
	logger      *slog.Logger
	maxAttempts int
	defaultRole string
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger sets the reconciler logger.
func WithReconcilerLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxUsernameAttempts bounds the numeric suffixes tried when a synthesized
// username is already taken.
func WithMaxUsernameAttempts(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithReconcilerDefaultRole sets the role granted to accounts created on first login.
func WithReconcilerDefaultRole(role string) ReconcilerOption {
	return func(r *Reconciler) {
		if role = NormalizeRole(role); role != "" {
			r.defaultRole = role
		}
	}
}

// NewReconciler returns a Reconciler backed by store.
func NewReconciler(store Store, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:       store,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAttempts: defaultMaxUsernameAttempts,
		defaultRole: RoleUser,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("oauth_reconciler"))
	return r
}

// Reconcile returns the local account for the external identity, creating or
// linking one as needed. At most one write is made per resolution.
//
// A uniqueness conflict while writing means another request won the race for the
// same identity; the resolution is retried once so the concurrent winner is found.
func (r *Reconciler) Reconcile(ctx context.Context, provider, providerID, email, displayName string) (*User, error) {
	id := identity{
		provider:    strings.ToLower(strings.TrimSpace(provider)),
		providerID:  strings.TrimSpace(providerID),
		email:       NormalizeEmail(email),
		displayName: strings.TrimSpace(displayName),
	}
	if id.providerID == "" {
		return nil, ErrMissingProviderID
	}
	if id.email == "" {
		return nil, ErrMissingEmail
	}

	u, err := r.resolve(ctx, id)
	if err == nil || !errors.Is(err, ErrUniqueViolation) {
		return u, err
	}

	r.logger.InfoContext(ctx, "concurrent reconciliation detected, retrying",
		logger.Provider(id.provider),
		logger.Error(err),
	)
	u, err = r.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reconcile after conflict: %w", err)
	}
	return u, nil
}

type identity struct {
	provider    string
	providerID  string
	email       string
	displayName string
}

func (r *Reconciler) resolve(ctx context.Context, id identity) (*User, error) {
	u, err := r.store.FindByProvider(ctx, id.provider, id.providerID)
	switch {
	case err == nil:
		return r.refresh(ctx, u, id)
	case !isNotFound(err):
		return nil, fmt.Errorf("find by provider: %w", err)
	}

	u, err = r.store.FindByEmail(ctx, id.email)
	switch {
	case err == nil:
		return r.link(ctx, u, id)
	case !isNotFound(err):
		return nil, fmt.Errorf("find by email: %w", err)
	}

	return r.create(ctx, id)
}

func (r *Reconciler) refresh(ctx context.Context, u *User, id identity) (*User, error) {
	changed := false
	if u.Email != id.email {
		u.Email = id.email
		changed = true
	}
	if id.displayName != "" && u.DisplayName != id.displayName {
		u.DisplayName = id.displayName
		changed = true
	}
	if !changed {
		return u, nil
	}

	saved, err := r.store.Save(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("refresh linked account: %w", err)
	}
	return saved, nil
}

func (r *Reconciler) link(ctx context.Context, u *User, id identity) (*User, error) {
	r.logger.WarnContext(ctx, "linking external identity to existing account by email",
		logger.UserID(u.ID),
		logger.Provider(id.provider),
		slog.String("previous_provider", u.Provider),
		slog.Bool("had_password", u.HasPassword()),
	)

	u.Provider = id.provider
	u.ProviderID = id.providerID
	if u.DisplayName == "" {
		u.DisplayName = id.displayName
	}

	saved, err := r.store.Save(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("link account: %w", err)
	}
	return saved, nil
}

func (r *Reconciler) create(ctx context.Context, id identity) (*User, error) {
	username, err := r.allocateUsername(ctx, id.email)
	if err != nil {
		return nil, err
	}

	saved, err := r.store.Save(ctx, &User{
		Username:    username,
		Email:       id.email,
		DisplayName: id.displayName,
		Roles:       []string{r.defaultRole},
		Provider:    id.provider,
		ProviderID:  id.providerID,
		Enabled:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	r.logger.InfoContext(ctx, "account created from external identity",
		logger.UserID(saved.ID),
		logger.Provider(id.provider),
	)
	return saved, nil
}

// allocateUsername derives a free username from the local part of email,
// appending 1, 2, ... while the candidate is taken.
func (r *Reconciler) allocateUsername(ctx context.Context, email string) (string, error) {
	base := usernameBase(email)
	for i := 0; i < r.maxAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		taken, err := r.store.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: base %q after %d attempts", ErrUsernameExhausted, base, r.maxAttempts)
}

func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name, err := precis.UsernameCaseMapped.String(local)
	if err != nil || name == "" {
		return fallbackUsername
	}
	return name
}
