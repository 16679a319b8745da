package domain

import "errors"

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrYearUnknown means a document's survey year could not be determined
	// from its path and was not supplied. Fatal for that document.
	ErrYearUnknown = errors.New("survey year unknown")
)
