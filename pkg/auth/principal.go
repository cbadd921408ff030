package auth

import (
	"context"
	"slices"
)

// Principal is the identity attached to one request after token verification.
// It is never persisted and never shared between requests.
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// HasAnyRole reports whether p holds at least one of roles. With no roles
// given it reports false. A legacy ROLE_ prefix is ignored on both sides.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		want = NormalizeRole(want)
		if slices.ContainsFunc(p.Roles, func(r string) bool { return NormalizeRole(r) == want }) {
			return true
		}
	}
	return false
}

// NewPrincipal derives the principal for an account.
func NewPrincipal(u *User) Principal {
	return Principal{Subject: u.Subject(), Roles: slices.Clone(u.Roles)}
}

type principalContextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the request principal, if the request is authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.Subject == "" {
		return Principal{}, false
	}
	return p, true
}
