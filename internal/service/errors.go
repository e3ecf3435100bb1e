package service

import "errors"

// Error taxonomy shared by every operation. Handlers map these onto HTTP
// status codes; everything else is treated as an internal failure.
var (
	// ErrValidation marks malformed or constraint-violating input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated covers missing, malformed, expired and
	// domain-rejected credentials. Deliberately opaque: callers never learn
	// which sub-check failed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden marks an authenticated caller lacking the required role
	// or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an absent entity.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict marks a valid request the current state disallows,
	// e.g. approving an account that is already a host.
	ErrStateConflict = errors.New("state conflict")

	// ErrEmailTaken marks a signup against an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnavailable marks a downstream store failure. Not retried here;
	// the caller decides.
	ErrUnavailable = errors.New("service unavailable")
)
