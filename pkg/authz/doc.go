// Package authz decides whether a request may reach a route.
//
// A Policy is an ordered list of rules, each pairing an Ant-style path pattern
// (and optionally a set of HTTP methods) with the access it requires. The first
// rule that matches decides; rules are never re-sorted. Requests that match no
// rule get the policy's default access.
//
// Patterns are matched segment by segment:
//
//	/api/auth/signin   literal
//	/api/users/*       exactly one segment
//	/api/users/{id}    exactly one segment, named for readability
//	/oauth2/**         zero or more trailing segments
//
// Evaluate returns Unauthenticated when a protected route is reached without a
// principal and Forbidden when the principal lacks every required role;
// Middleware turns those into 401 and 403 responses.
//
//	policy := authz.NewPolicy(authz.Authenticated(),
//		authz.Rule{Pattern: "/api/auth/signin", Methods: []string{"POST"}, Access: authz.Public()},
//		authz.Rule{Pattern: "/api/admin/**", Access: authz.Roles(auth.RoleAdmin)},
//	)
//	r.Use(auth.Middleware(tokens), authz.Middleware(policy))
//
// Policies may also be loaded from YAML with LoadYAML.
package authz
