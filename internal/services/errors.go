package services

import "errors"

// Sentinel errors surfaced by the synchronous mutation path. Handlers map
// them to HTTP statuses with errors.Is. Notification-path failures are
// never represented here: they are contained in the dispatcher and its
// workers.
var (
	// ErrNotFound covers a missing target post, comment or reaction, and
	// moderation attempts on a deleted comment.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent means the parent comment belongs to a different
	// thread root than the one supplied.
	ErrInvalidParent = errors.New("parent comment belongs to a different thread")

	// ErrUnauthorized means the actor is not allowed to perform the
	// operation (moderation by a non-author of the post).
	ErrUnauthorized = errors.New("not authorized")

	// ErrValidation covers malformed input such as an unknown reaction
	// kind or a non-conforming recipient number.
	ErrValidation = errors.New("validation failed")
)
