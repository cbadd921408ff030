package authz

import (
	"slices"
	"strings"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

type accessKind uint8

const (
	accessAuthenticated accessKind = iota
	accessPublic
	accessRoles
)

// Access is the requirement a rule places on the caller.
type Access struct {
	kind  accessKind
	roles []string
}

// Public lets every request through.
func Public() Access {
	return Access{kind: accessPublic}
}

// Authenticated requires any principal.
func Authenticated() Access {
	return Access{kind: accessAuthenticated}
}

// Roles requires a principal holding at least one of roles.
// A legacy ROLE_ prefix is ignored.
func Roles(roles ...string) Access {
	normalized := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = auth.NormalizeRole(r); r != "" && !slices.Contains(normalized, r) {
			normalized = append(normalized, r)
		}
	}
	return Access{kind: accessRoles, roles: normalized}
}

// RequiredRoles returns the roles a role-gated access accepts.
func (a Access) RequiredRoles() []string {
	return slices.Clone(a.roles)
}

func (a Access) String() string {
	switch a.kind {
	case accessPublic:
		return "public"
	case accessRoles:
		return "roles(" + strings.Join(a.roles, ",") + ")"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision uint8

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

func (a Access) decide(p *auth.Principal) Decision {
	switch a.kind {
	case accessPublic:
		return Allow
	case accessRoles:
		if p == nil {
			return Unauthenticated
		}
		if len(a.roles) > 0 && p.HasAnyRole(a.roles...) {
			return Allow
		}
		return Forbidden
	default:
		if p == nil {
			return Unauthenticated
		}
		return Allow
	}
}
