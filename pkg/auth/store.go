package auth

import (
	"context"
	"errors"
)

// Store is the persistence contract for accounts.
//
// Implementations report misses with ErrUserNotFound and infrastructure failures
// wrapping ErrStoreUnavailable. Uniqueness is enforced by the store itself: a
// conflicting Save returns an error matching ErrUniqueViolation together with
// ErrUsernameTaken or ErrEmailTaken.
//
// Save inserts when no record with u.ID exists (assigning ID, CreatedAt, default
// roles and Enabled) and replaces it otherwise. UpdatedAt is refreshed on every call.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u *User) (*User, error)
}

// UniqueViolation builds the error a Store returns when Save conflicts on field,
// which is one of ErrUsernameTaken or ErrEmailTaken.
func UniqueViolation(field error) error {
	return errors.Join(ErrUniqueViolation, field)
}

// StoreUnavailable wraps an infrastructure failure from a Store backend.
func StoreUnavailable(op string, err error) error {
	return errors.Join(ErrStoreUnavailable, &StoreError{Op: op, Err: err})
}

// StoreError records the failing store operation and its cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
