package types

import "errors"

var (
	// ErrNotFound indicates nothing is stored under the requested name.
	ErrNotFound = errors.New("storage: file not found")

	// ErrIOFailure indicates a create, write, open or read error.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrInvalidName indicates a name that is empty or escapes the store root.
	ErrInvalidName = errors.New("storage: invalid file name")

	// ErrInvalidBaseDir indicates the configured base directory is unusable.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")
)
