// Package account is the HTTP surface of the auth server: local signup and
// sign-in, the OAuth2 login redirects, and the current-user endpoints.
//
// NewRouter assembles the chi router with the middleware chain
// RequestID, Recoverer, request logging, token authentication (auth.Middleware)
// and route authorization (authz.Middleware). Handlers answer with the JSON
// envelope {"data": ...} or {"error": {"code", "message", "details"}}.
package account
