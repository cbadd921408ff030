package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

// PasswordHasher hashes and checks passwords. *password.Hasher implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	NeedsRehash(hash string) bool
}

// dummyPassword is hashed once and compared against when no account matches,
// so a miss costs the same as a wrong password.
const dummyPassword = "timing-equalization-placeholder"

// Authenticator checks username-or-email and password pairs against a Store.
type Authenticator struct {
	store     Store
	hasher    PasswordHasher
	logger    *slog.Logger
	dummyHash func() string
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorLogger sets the logger used for failed attempts.
func WithAuthenticatorLogger(l *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthenticator returns an Authenticator backed by store and hasher.
func NewAuthenticator(store Store, hasher PasswordHasher, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		store:  store,
		hasher: hasher,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("authenticator"))
	a.dummyHash = sync.OnceValue(func() string {
		h, err := hasher.Hash(dummyPassword)
		if err != nil {
			return ""
		}
		return h
	})
	return a
}

// Authenticate resolves identifier (email first, then username) and checks password.
// Every credential failure is reported as ErrInvalidCredentials; store failures are
// returned as they are.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (Principal, error) {
	u, err := a.AuthenticateUser(ctx, identifier, password)
	if err != nil {
		return Principal{}, err
	}
	return NewPrincipal(u), nil
}

// AuthenticateUser is Authenticate returning the full account record.
func (a *Authenticator) AuthenticateUser(ctx context.Context, identifier, password string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		a.logger.DebugContext(ctx, "sign-in rejected: empty credentials")
		return nil, ErrInvalidCredentials
	}

	u, err := a.lookup(ctx, identifier)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("resolve account: %w", err)
		}
		a.hasher.Verify(password, a.dummyHash())
		a.logger.DebugContext(ctx, "sign-in rejected: no such account")
		return nil, ErrInvalidCredentials
	}

	if !u.HasPassword() || !u.Enabled {
		a.hasher.Verify(password, a.dummyHash())
		a.logger.DebugContext(ctx, "sign-in rejected: account cannot use password",
			logger.UserID(u.ID),
			slog.Bool("enabled", u.Enabled),
		)
		return nil, ErrInvalidCredentials
	}

	if !a.hasher.Verify(password, u.PasswordHash) {
		a.logger.DebugContext(ctx, "sign-in rejected: password mismatch", logger.UserID(u.ID))
		return nil, ErrInvalidCredentials
	}

	if a.hasher.NeedsRehash(u.PasswordHash) {
		a.logger.WarnContext(ctx, "password hash uses outdated cost", logger.UserID(u.ID))
	}

	return u, nil
}

func (a *Authenticator) lookup(ctx context.Context, identifier string) (*User, error) {
	u, err := a.store.FindByEmail(ctx, NormalizeEmail(identifier))
	if err == nil {
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return a.store.FindByUsername(ctx, identifier)
}
