package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a unique attribute is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a bearer token that cannot be trusted.
	ErrInvalidToken = errors.New("invalid token")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)
