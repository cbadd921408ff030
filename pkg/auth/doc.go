// Package auth is the identity core: local credential checks, registration,
// reconciliation of external identity provider logins, session issuance and the
// request authenticator middleware.
//
// Persistence is abstracted behind Store; password hashing and token handling are
// injected through PasswordHasher, TokenIssuer and TokenVerifier, which
// pkg/password and pkg/jwt implement.
//
// # Credentials
//
//	authn := auth.NewAuthenticator(store, password.New())
//	principal, err := authn.Authenticate(ctx, "alice@example.com", "secret")
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//		// unknown account, wrong password, disabled account or no password set
//	}
//
// The identifier is looked up by email first and by username second. Failures
// are indistinguishable to the caller and take comparable time.
//
// # External identities
//
//	rec := auth.NewReconciler(store)
//	user, err := rec.Reconcile(ctx, auth.ProviderGoogle, profile.ID, profile.Email, profile.Name)
//
// Reconcile returns the linked account, links an account with the same email, or
// creates one. Linking by email is logged at Warn: it grants the external identity
// access to an existing account.
//
// # Requests
//
// Middleware reads an "Authorization: Bearer" header and stores the resulting
// Principal in the request context:
//
//	r.Use(auth.Middleware(tokens))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		p, ok := auth.PrincipalFromContext(r.Context())
//		...
//	}
//
// Invalid tokens never fail the request here; see pkg/authz for enforcement.
package auth
