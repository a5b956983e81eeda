package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists signals a uniqueness conflict (duplicate email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrDeviceNotLinked signals an ingestion event from an unregistered device.
	ErrDeviceNotLinked = errors.New("device not linked to any user")
)
