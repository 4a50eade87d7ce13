package data

import "errors"

// Shared sentinel errors for dispatch record repositories.
var (
	ErrDIDRequired = errors.New("did cannot be empty")
	// ErrInvalidStatus is returned when a record carries an unknown dispatch status.
	ErrInvalidStatus = errors.New("invalid dispatch status")
)
