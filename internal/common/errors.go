// Package common defines shared constants and sentinel errors used across
// the client layers of studysync. Callers should use errors.Is to match these
// values; transport-specific errors wrap one of them.
package common

import "errors"

var (
	// Session errors.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Backend response classes.
	ErrValidation  = errors.New("validation error")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
	ErrNetwork     = errors.New("network error")
	ErrServer      = errors.New("server error")

	// Identity provider errors. These are stable kinds mapped from provider
	// error codes and never depend on message text.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("weak password")
)
