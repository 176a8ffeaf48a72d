package domain

import "errors"

// Sentinel errors reported by providers and stores.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPersistence        = errors.New("persistence failure")
	ErrInvalidInput       = errors.New("invalid input")
)
