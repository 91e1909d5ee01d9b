package types

import "errors"

// Sentinel domain errors. Repositories and services wrap these with %w so
// handlers can translate them into HTTP statuses with errors.Is.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrBadRequest      = errors.New("invalid request")
	ErrValidation      = errors.New("validation failed")
	ErrInternal        = errors.New("internal error")
)
