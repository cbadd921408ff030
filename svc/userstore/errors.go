package userstore

import (
	"errors"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

// ErrProviderLinked is joined with auth.ErrUniqueViolation when another account
// already carries the same provider identity.
var ErrProviderLinked = errors.New("provider identity already linked to another account")

func isNotFound(err error) bool {
	return errors.Is(err, auth.ErrUserNotFound)
}
