package fleet

import "errors"

var (
	// ErrServerNotFound signals that the requested server id is not part of the fleet
	ErrServerNotFound = errors.New("server not found")

	// ErrInvalidServerCount signals a fleet size below 1
	ErrInvalidServerCount = errors.New("invalid server count")

	// ErrInvalidIDPattern signals a server id pattern that can not format distinct ordinals
	ErrInvalidIDPattern = errors.New("invalid server id pattern")
)
