package billing

import "errors"

// Core failures. Handlers translate these to HTTP statuses; the core never
// produces user-facing messages.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
)
