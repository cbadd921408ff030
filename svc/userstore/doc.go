// Package userstore provides auth.Store implementations.
//
// Mongo persists accounts in a MongoDB collection and relies on unique indexes for
// username, email and provider identity. Memory keeps accounts in process and
// enforces the same constraints under a mutex; it backs tests and local
// development (AUTH_STORE=memory).
//
// Both report misses as auth.ErrUserNotFound, conflicting writes as
// auth.ErrUniqueViolation joined with the field error, and backend failures as
// auth.ErrStoreUnavailable.
package userstore
