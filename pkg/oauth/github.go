package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

const githubAPIBase = "https://api.github.com"

// GitHubConfig holds the GitHub OAuth app registration. The provider is
// disabled when ClientID is empty.
type GitHubConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/login/oauth2/code/github"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
	StateTTL     time.Duration `env:"GITHUB_OAUTH_STATE_TTL" envDefault:"10m"`
	VerifiedOnly bool          `env:"GITHUB_OAUTH_VERIFIED_ONLY" envDefault:"true"`
}

// Enabled reports whether the provider is configured.
func (c GitHubConfig) Enabled() bool {
	return c.ClientID != ""
}

type githubAdapter struct {
	adapterBase
}

var _ ProviderAdapter = (*githubAdapter)(nil)

// NewGitHubAdapter returns the GitHub provider adapter.
func NewGitHubAdapter(cfg GitHubConfig, opts ...AdapterOption) ProviderAdapter {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint:     github.Endpoint,
	}
	return &githubAdapter{adapterBase: newAdapterBase(conf, githubAPIBase, opts)}
}

func (a *githubAdapter) ProviderID() string {
	return auth.ProviderGitHub
}

func (a *githubAdapter) AuthURL(state string) (string, error) {
	return a.conf.AuthCodeURL(state), nil
}

// ResolveProfile prefers the primary verified address from /user/emails, then any
// verified address, then the public profile email reported as unverified.
func (a *githubAdapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := a.exchange(ctx, code)
	if err != nil {
		return Profile{}, err
	}

	hdr := http.Header{"Accept": []string{"application/vnd.github+json"}}

	var u githubUser
	if err := a.getJSON(ctx, tok, "/user", hdr, &u); err != nil {
		return Profile{}, fmt.Errorf("fetch github user: %w", err)
	}
	if u.ID == 0 {
		return Profile{}, ErrMissingProfileID
	}

	var emails []githubEmail
	if err := a.getJSON(ctx, tok, "/user/emails", hdr, &emails); err != nil {
		return Profile{}, fmt.Errorf("fetch github emails: %w", err)
	}

	email, verified := pickGitHubEmail(emails)
	if email == "" && u.Email != "" {
		email, verified = u.Email, false
	}
	if email == "" {
		return Profile{}, ErrNoEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}

	return Profile{
		ProviderUserID: strconv.FormatInt(u.ID, 10),
		Email:          email,
		EmailVerified:  verified,
		Name:           name,
		AvatarURL:      u.AvatarURL,
	}, nil
}

func pickGitHubEmail(emails []githubEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	return "", false
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}
