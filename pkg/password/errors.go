package password

import "errors"

var (
	ErrEmptyPassword   = errors.New("password: empty password")
	ErrPasswordTooLong = errors.New("password: exceeds 72 bytes")
	ErrMalformedHash   = errors.New("password: malformed hash")
)
