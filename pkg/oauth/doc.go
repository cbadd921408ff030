// Package oauth runs the authorization code flow against external identity
// providers and returns a normalized Profile for account reconciliation.
//
// A Flow pairs one ProviderAdapter with a StateStore. Begin issues a random
// single-use state, stores it and returns the provider's consent URL. Complete
// consumes the state, exchanges the code and resolves the profile:
//
//	flow := oauth.NewFlow(oauth.NewGoogleAdapter(googleCfg), oauth.NewRedisStateStore(rdb, "oauth:state:"))
//	url, err := flow.Begin(ctx)
//	...
//	profile, err := flow.Complete(ctx, r.URL.Query().Get("code"), r.URL.Query().Get("state"))
//	user, err := reconciler.Reconcile(ctx, flow.ProviderID(), profile.ProviderUserID, profile.Email, profile.Name)
//
// Adapters for Google and GitHub are built on golang.org/x/oauth2. A provider that
// exposes no usable email makes Complete fail with ErrNoEmail, which also matches
// auth.ErrMissingEmail.
package oauth
