package models

import "errors"

// Error taxonomy shared by storage and handlers. Handlers translate these into
// HTTP status codes; anything else is treated as a persistence failure.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("duplicate key")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
