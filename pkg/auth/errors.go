package auth

import "errors"

// Authentication errors
var (
	// ErrInvalidCredentials is returned for every failed password sign-in,
	// whatever the underlying cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Registration errors
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
	ErrValidation    = errors.New("validation failed")
)

// OAuth reconciliation errors
var (
	ErrMissingEmail      = errors.New("email not provided by identity provider")
	ErrMissingProviderID = errors.New("provider user id not provided")
	ErrUsernameExhausted = errors.New("could not allocate a unique username")
)

// Store contract errors. Store implementations wrap these so callers can use errors.Is.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUniqueViolation  = errors.New("unique constraint violation")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
