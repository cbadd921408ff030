// Package jwt issues and verifies the stateless session tokens used for bearer
// authentication.
//
// Tokens are compact JWS values (header.claims.signature, base64url segments)
// signed with HMAC-SHA256 over a server-held secret. The claims carry the
// subject, its roles, issued-at and expiry; the token is the only source of
// session state, so a restart or another instance sharing the secret accepts
// every unexpired token it did not mint itself.
//
// # Usage
//
//	svc, err := jwt.New(jwt.Config{Secret: secret, TTL: 24 * time.Hour})
//	if err != nil {
//		// secret missing or shorter than MinSecretLength
//	}
//
//	token, claims, err := svc.Issue("alice@example.com", []string{"USER"}, time.Now())
//
//	claims, err = svc.Verify(token, time.Now())
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):
//	case errors.Is(err, jwt.ErrInvalidSignature):
//	case errors.Is(err, jwt.ErrMalformedToken):
//	}
//
// Verify reports exactly one of the three sentinel errors on failure. An
// expired token is reported as expired even when its signature does not match,
// but no claim of an unverified token is ever returned to the caller.
//
// BearerToken extracts the raw token from an "Authorization: Bearer" header.
// SetToken and GetToken carry it through a request context.
//
// The codec is built on github.com/golang-jwt/jwt/v5.
package jwt
