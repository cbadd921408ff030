package authz

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

// Rule grants Access to requests whose path matches Pattern and, when Methods
// is non-empty, whose method is listed.
type Rule struct {
	Pattern string
	Methods []string
	Access  Access
}

type compiledRule struct {
	rule    Rule
	pattern pattern
	methods []string
}

func (c compiledRule) matches(method, urlPath string) bool {
	if len(c.methods) > 0 && !slices.Contains(c.methods, strings.ToUpper(method)) {
		return false
	}
	return c.pattern.match(urlPath)
}

// Policy is an immutable ordered rule list. It is safe for concurrent use.
type Policy struct {
	rules         []compiledRule
	defaultAccess Access
}

// NewPolicy compiles rules in declaration order. Requests matching no rule get defaultAccess.
func NewPolicy(defaultAccess Access, rules ...Rule) (*Policy, error) {
	p := &Policy{defaultAccess: defaultAccess, rules: make([]compiledRule, 0, len(rules))}
	if err := validateAccess(defaultAccess); err != nil {
		return nil, fmt.Errorf("default access: %w", err)
	}

	for i, r := range rules {
		pat, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := validateAccess(r.Access); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Pattern, err)
		}

		methods := make([]string, 0, len(r.Methods))
		for _, m := range r.Methods {
			methods = append(methods, strings.ToUpper(strings.TrimSpace(m)))
		}
		p.rules = append(p.rules, compiledRule{rule: r, pattern: pat, methods: methods})
	}
	return p, nil
}

// MustPolicy is NewPolicy that panics on error, for statically known rule sets.
func MustPolicy(defaultAccess Access, rules ...Rule) *Policy {
	p, err := NewPolicy(defaultAccess, rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Evaluate decides the request. p is nil for anonymous requests.
func (pol *Policy) Evaluate(method, urlPath string, p *auth.Principal) Decision {
	return pol.Access(method, urlPath).decide(p)
}

// Access returns the access required for method and urlPath: the first matching
// rule's, or the default.
func (pol *Policy) Access(method, urlPath string) Access {
	for _, r := range pol.rules {
		if r.matches(method, urlPath) {
			return r.rule.Access
		}
	}
	return pol.defaultAccess
}

// Rules returns the rules in evaluation order.
func (pol *Policy) Rules() []Rule {
	out := make([]Rule, len(pol.rules))
	for i, r := range pol.rules {
		out[i] = r.rule
	}
	return out
}

func validateAccess(a Access) error {
	if a.kind == accessRoles && len(a.roles) == 0 {
		return ErrMissingRoles
	}
	return nil
}

// DefaultPolicy is the route table of the account service: sign-in, sign-up,
// status, health and the OAuth endpoints are public, admin and moderation
// areas are role gated, and everything else requires authentication.
func DefaultPolicy() *Policy {
	return MustPolicy(Authenticated(),
		Rule{Pattern: "/api/auth/oauth-info", Access: Roles(auth.RoleAdmin)},
		Rule{Pattern: "/api/auth/signin", Methods: []string{http.MethodPost}, Access: Public()},
		Rule{Pattern: "/api/auth/signup", Methods: []string{http.MethodPost}, Access: Public()},
		Rule{Pattern: "/api/auth/register", Methods: []string{http.MethodPost}, Access: Public()},
		Rule{Pattern: "/api/auth/status", Access: Public()},
		Rule{Pattern: "/oauth2/**", Access: Public()},
		Rule{Pattern: "/login/oauth2/**", Access: Public()},
		Rule{Pattern: "/health", Access: Public()},
		Rule{Pattern: "/health-check", Access: Public()},
		Rule{Pattern: "/", Access: Public()},
		Rule{Pattern: "/api/admin/**", Access: Roles(auth.RoleAdmin)},
		Rule{Pattern: "/api/moderation/**", Access: Roles(auth.RoleModerator, auth.RoleAdmin)},
	)
}
