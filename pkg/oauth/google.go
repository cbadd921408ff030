package oauth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

const googleAPIBase = "https://www.googleapis.com"

// GoogleConfig holds the Google client registration. The provider is disabled
// when ClientID is empty.
type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/login/oauth2/code/google"`
	Scopes       []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
	StateTTL     time.Duration `env:"GOOGLE_OAUTH_STATE_TTL" envDefault:"10m"`
	VerifiedOnly bool          `env:"GOOGLE_OAUTH_VERIFIED_ONLY" envDefault:"true"`
}

// Enabled reports whether the provider is configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

type googleAdapter struct {
	adapterBase
}

var _ ProviderAdapter = (*googleAdapter)(nil)

// NewGoogleAdapter returns the Google provider adapter.
func NewGoogleAdapter(cfg GoogleConfig, opts ...AdapterOption) ProviderAdapter {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     google.Endpoint,
	}
	return &googleAdapter{adapterBase: newAdapterBase(conf, googleAPIBase, opts)}
}

func (a *googleAdapter) ProviderID() string {
	return auth.ProviderGoogle
}

func (a *googleAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

func (a *googleAdapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := a.exchange(ctx, code)
	if err != nil {
		return Profile{}, err
	}

	var u googleUser
	if err := a.getJSON(ctx, tok, "/oauth2/v2/userinfo", nil, &u); err != nil {
		return Profile{}, fmt.Errorf("fetch google user: %w", err)
	}
	if u.ID == "" {
		return Profile{}, ErrMissingProfileID
	}
	if u.Email == "" {
		return Profile{}, ErrNoEmail
	}

	return Profile{
		ProviderUserID: u.ID,
		Email:          u.Email,
		EmailVerified:  u.VerifiedEmail,
		Name:           u.Name,
		AvatarURL:      u.Picture,
	}, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
