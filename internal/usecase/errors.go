package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrAlreadyRunning        = errors.New("job already running")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
