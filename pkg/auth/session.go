package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/jwt"
)

// TokenIssuer mints session tokens. *jwt.Service implements it.
type TokenIssuer interface {
	Issue(subject string, roles []string, now time.Time) (string, jwt.Claims, error)
}

var errNoAuthenticator = errors.New("sign in: no authenticator configured")

// Session is a freshly minted bearer token and the account it was issued for.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"-"`
}

// Sessions issues tokens for authenticated accounts.
type Sessions struct {
	issuer        TokenIssuer
	authenticator *Authenticator
	now           func() time.Time
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithSessionClock overrides the clock used for iat and exp.
func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionAuthenticator enables SignIn.
func WithSessionAuthenticator(a *Authenticator) SessionsOption {
	return func(s *Sessions) {
		s.authenticator = a
	}
}

// NewSessions returns Sessions minting tokens with issuer.
func NewSessions(issuer TokenIssuer, opts ...SessionsOption) *Sessions {
	s := &Sessions{issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a token for u carrying its stored roles.
func (s *Sessions) Issue(u *User) (Session, error) {
	token, claims, err := s.issuer.Issue(u.Subject(), u.Roles, s.now())
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	session := Session{Token: token, User: u}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SignIn authenticates the credentials and issues a session for the account.
func (s *Sessions) SignIn(ctx context.Context, identifier, password string) (Session, error) {
	if s.authenticator == nil {
		return Session{}, errNoAuthenticator
	}

	u, err := s.authenticator.AuthenticateUser(ctx, identifier, password)
	if err != nil {
		return Session{}, err
	}
	return s.Issue(u)
}
