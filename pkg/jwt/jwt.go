package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session token.
type Claims struct {
	gojwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Service signs and verifies session tokens with HS256.
// The secret is read-only after construction; a Service is safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// New validates cfg and returns a token Service.
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrInvalidSigningKey
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, ErrInvalidTTL
	}

	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
	}, nil
}

// TTL returns the lifetime applied to issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue mints a token for subject carrying roles, valid from now until now+TTL.
func (s *Service) Issue(subject string, roles []string, now time.Time) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, ErrMissingSubject
	}

	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiry(now, s.ttl)),
		},
		Roles: append([]string(nil), roles...),
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwt: sign token: %w", err)
	}
	return token, claims, nil
}

// Verify checks the signature and expiry of token at time now and returns its claims.
func (s *Service) Verify(token string, now time.Time) (Claims, error) {
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrMalformedToken
	}

	var claims Claims
	_, err := s.parser(now).ParseWithClaims(token, &claims, s.keyFunc)
	if err != nil {
		return Claims{}, s.classify(token, now, err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrMalformedToken
	}
	return claims, nil
}

func (s *Service) parser(now time.Time) *gojwt.Parser {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(func() time.Time { return now }),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}
	return gojwt.NewParser(opts...)
}

func (s *Service) keyFunc(t *gojwt.Token) (any, error) {
	if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
	}
	return s.secret, nil
}

// classify collapses library errors into the package sentinels.
// Expiry takes precedence over a signature failure; the unverified claims are
// read only to make that decision and are then discarded.
func (s *Service) classify(token string, now time.Time, err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenMalformed),
		errors.Is(err, gojwt.ErrTokenRequiredClaimMissing):
		return ErrMalformedToken
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid),
		errors.Is(err, gojwt.ErrTokenUnverifiable):
		if expiredUnverified(token, now) {
			return ErrExpiredToken
		}
		return ErrInvalidSignature
	case errors.Is(err, gojwt.ErrTokenInvalidIssuer):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}

func expiredUnverified(token string, now time.Time) bool {
	var claims Claims
	if _, _, err := gojwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// expiry rounds now+ttl up to the next whole second, since exp is encoded in seconds
// and truncation could otherwise shorten the lifetime below ttl.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(time.Second); t.Before(exp) {
		return t.Add(time.Second)
	}
	return exp
}
