// Package common defines the error taxonomy and small helpers shared by the
// CrowdBid server and its clients. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Caller errors, surfaced as a rejected operation.
	ErrorValidation       = errors.New("validation error")
	ErrDuplicateBidder    = errors.New("bidder already registered")
	ErrNameConflict       = errors.New("bidder name already in use")
	ErrorNotFound         = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrorStorage marks transient storage failures; callers may retry.
	ErrorStorage = errors.New("storage error")

	// ErrNotification is logged by publishers and never returned to callers.
	ErrNotification = errors.New("notification error")
)

// IsCallerError reports whether err is one of the errors caused by the
// request itself rather than by the infrastructure.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrorValidation) ||
		errors.Is(err, ErrDuplicateBidder) ||
		errors.Is(err, ErrNameConflict) ||
		errors.Is(err, ErrorNotFound) ||
		errors.Is(err, ErrPreconditionFailed)
}
