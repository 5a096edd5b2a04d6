package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrVersionConflict indicates the record was modified concurrently
	// and the optimistic version guard rejected the update.
	ErrVersionConflict = errors.New("repository: version conflict")
)
