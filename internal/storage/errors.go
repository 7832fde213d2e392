package storage

import "errors"

var (
	// ErrUserNotFound is returned by per-slot operations when the slot
	// does not exist on disk.
	ErrUserNotFound = errors.New("user not found")

	// ErrResultNotFound is returned when no prediction directory matches
	// the requested result id.
	ErrResultNotFound = errors.New("analysis result not found")

	// ErrCapacityExceeded is returned when all user slots are taken.
	ErrCapacityExceeded = errors.New("maximum number of users reached")
)
