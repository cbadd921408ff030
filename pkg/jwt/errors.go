package jwt

import "errors"

var (
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrInvalidSigningKey = errors.New("jwt: signing key too short")
	ErrInvalidTTL        = errors.New("jwt: ttl must be positive")
	ErrMissingSubject    = errors.New("jwt: missing subject")
)

// Verification failures. Verify returns exactly one of these.
var (
	ErrMalformedToken   = errors.New("jwt: malformed token")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrExpiredToken     = errors.New("jwt: token is expired")
)
