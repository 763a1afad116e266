package service

import "errors"

// Validation failures are returned as validator.ValidationErrors; everything
// not listed here is an internal error.
var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEntryExists     = errors.New("entry already exists for today")
)
