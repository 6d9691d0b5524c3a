package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrInvalidReference indicates a write named a related record that does not exist.
	ErrInvalidReference = errors.New("repository: invalid reference")
	// ErrConflict indicates a uniqueness or referential constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
	// ErrInsufficientStock indicates a conditional stock decrement matched no row.
	ErrInsufficientStock = errors.New("repository: insufficient stock")
	// ErrRollbackFailed indicates a failed transaction could not be rolled back cleanly.
	ErrRollbackFailed = errors.New("repository: rollback failed")
)
