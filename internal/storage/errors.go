package storage

import "errors"

var (
	// ErrStorage wraps read and write failures on durable storage.
	ErrStorage = errors.New("storage: operation failed")

	// ErrNotFound is returned by Open when nothing is stored at the path.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidPath is returned for absolute paths or paths escaping the root.
	ErrInvalidPath = errors.New("storage: invalid path")

	// ErrInvalidConfig is returned when a store cannot be built from its config.
	ErrInvalidConfig = errors.New("storage: invalid config")
)
