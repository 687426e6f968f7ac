package chat

import "errors"

var (
	// ErrNotFound is returned when a conversation or listing does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not a participant of the
	// conversation, or would start a conversation with themselves.
	ErrForbidden = errors.New("forbidden")
)
