package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/logger"
)

const defaultStateTTL = 10 * time.Minute

// Flow runs the authorization code flow for one provider.
type Flow struct {
	adapter      ProviderAdapter
	states       StateStore
	logger       *slog.Logger
	stateTTL     time.Duration
	verifiedOnly bool
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(l *slog.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithStateTTL sets how long a state issued by Begin stays valid.
func WithStateTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		if ttl > 0 {
			f.stateTTL = ttl
		}
	}
}

// WithVerifiedOnly rejects profiles whose email the provider has not verified.
// Enabled by default, since account linking trusts the email.
func WithVerifiedOnly(v bool) FlowOption {
	return func(f *Flow) {
		f.verifiedOnly = v
	}
}

// NewFlow returns a Flow for adapter with states kept in states.
func NewFlow(adapter ProviderAdapter, states StateStore, opts ...FlowOption) *Flow {
	f := &Flow{
		adapter:      adapter,
		states:       states,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		stateTTL:     defaultStateTTL,
		verifiedOnly: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Component("oauth_flow"), logger.Provider(adapter.ProviderID()))
	return f
}

// ProviderID returns the adapter's provider name.
func (f *Flow) ProviderID() string {
	return f.adapter.ProviderID()
}

// Begin stores a fresh state and returns the provider consent URL.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := f.states.Store(ctx, state, f.stateTTL); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	url, err := f.adapter.AuthURL(state)
	if err != nil {
		return "", fmt.Errorf("build auth url: %w", err)
	}
	return url, nil
}

// Complete validates state, exchanges code and returns the provider profile.
func (f *Flow) Complete(ctx context.Context, code, state string) (Profile, error) {
	if state == "" {
		return Profile{}, ErrInvalidState
	}
	if err := f.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			f.logger.WarnContext(ctx, "oauth callback with unknown state")
			return Profile{}, ErrInvalidState
		}
		return Profile{}, fmt.Errorf("validate state: %w", err)
	}

	profile, err := f.adapter.ResolveProfile(ctx, code)
	if err != nil {
		f.logger.WarnContext(ctx, "resolve provider profile failed", logger.Error(err))
		return Profile{}, err
	}

	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	if profile.Email == "" {
		return Profile{}, ErrNoEmail
	}
	if f.verifiedOnly && !profile.EmailVerified {
		f.logger.WarnContext(ctx, "rejected unverified provider email")
		return Profile{}, ErrUnverifiedEmail
	}
	return profile, nil
}

// newState returns 32 random bytes, base64url encoded.
func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Registry holds the configured flows by provider name.
type Registry struct {
	flows map[string]*Flow
}

// NewRegistry indexes flows by ProviderID. Nil flows are skipped.
func NewRegistry(flows ...*Flow) *Registry {
	r := &Registry{flows: make(map[string]*Flow, len(flows))}
	for _, f := range flows {
		if f != nil {
			r.flows[f.ProviderID()] = f
		}
	}
	return r
}

// Flow returns the flow for provider, or ErrUnknownProvider.
func (r *Registry) Flow(provider string) (*Flow, error) {
	if r != nil {
		if f, ok := r.flows[strings.ToLower(provider)]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}

// Providers returns the configured provider names.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.flows))
}
