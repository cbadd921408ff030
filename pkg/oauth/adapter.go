package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Profile is the provider identity normalized across adapters.
type Profile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// ProviderAdapter hides provider differences behind the code flow steps.
type ProviderAdapter interface {
	// ProviderID is the name stored in auth.User.Provider.
	ProviderID() string
	// AuthURL returns the consent URL carrying state.
	AuthURL(state string) (string, error)
	// ResolveProfile exchanges code and fetches the user's profile.
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

// AdapterOption overrides adapter endpoints and transport, mainly for tests.
type AdapterOption func(*adapterBase)

// WithEndpoint replaces the provider's authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) AdapterOption {
	return func(a *adapterBase) {
		a.conf.Endpoint = ep
	}
}

// WithAPIBaseURL replaces the base URL of the provider's user API.
func WithAPIBaseURL(base string) AdapterOption {
	return func(a *adapterBase) {
		if base != "" {
			a.apiBase = base
		}
	}
}

// WithHTTPClient sets the client used for token exchange and API calls.
func WithHTTPClient(c *http.Client) AdapterOption {
	return func(a *adapterBase) {
		if c != nil {
			a.httpClient = c
		}
	}
}

type adapterBase struct {
	conf       *oauth2.Config
	apiBase    string
	httpClient *http.Client
}

func newAdapterBase(conf *oauth2.Config, apiBase string, opts []AdapterOption) adapterBase {
	a := adapterBase{
		conf:       conf,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// exchange trades code for a token. Any failure is reported as ErrInvalidCode.
func (a *adapterBase) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}
	return tok, nil
}

// getJSON calls the provider API at path with the access token and decodes the body into out.
func (a *adapterBase) getJSON(ctx context.Context, tok *oauth2.Token, path string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiBase+path, nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderAPI, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrProviderAPI, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrProviderAPI, path, err)
	}
	return nil
}
