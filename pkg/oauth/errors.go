package oauth

import (
	"errors"
	"fmt"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

var (
	ErrInvalidState     = errors.New("oauth: invalid or expired state")
	ErrStateNotFound    = errors.New("oauth: state not found")
	ErrInvalidCode      = errors.New("oauth: invalid authorization code")
	ErrUnverifiedEmail  = errors.New("oauth: email not verified by provider")
	ErrUnknownProvider  = errors.New("oauth: unknown provider")
	ErrMissingProfileID = errors.New("oauth: provider returned no user id")
	ErrProviderAPI      = errors.New("oauth: provider api request failed")
)

// ErrNoEmail reports a provider profile without a usable email address.
var ErrNoEmail = fmt.Errorf("oauth: provider returned no usable email: %w", auth.ErrMissingEmail)
