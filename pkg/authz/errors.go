package authz

import "errors"

var (
	ErrEmptyPattern   = errors.New("authz: empty route pattern")
	ErrInvalidPattern = errors.New("authz: invalid route pattern")
	ErrUnknownAccess  = errors.New("authz: unknown access kind")
	ErrMissingRoles   = errors.New("authz: role access requires at least one role")
)
