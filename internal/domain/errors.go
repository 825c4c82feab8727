package domain

import "errors"

// Sentinel errors shared between repositories, services, and handlers.
// Handlers map these to HTTP status codes with errors.Is; anything else is
// treated as an infrastructure failure and surfaced as a generic 500.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)
