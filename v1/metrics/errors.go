package metrics

import "errors"

// Common metrics errors
var (
	// ErrInfoAlreadySet is returned when the value of an Info metric is set
	// more than once.
	ErrInfoAlreadySet = errors.New("metrics: info metric value is already set")

	// ErrCollectorCallbackSet is returned when a Collector's before-scrape
	// callback is installed more than once.
	ErrCollectorCallbackSet = errors.New("metrics: collector callback is already set")

	// ErrMalformedLine is returned (wrapped) by the format translator when a
	// line of the canonical exposition stream cannot be parsed. It indicates
	// a bug in the upstream encoder, not a user error.
	ErrMalformedLine = errors.New("metrics: malformed exposition line")
)

// IsInfoAlreadySetError checks if the error reports a repeated Info set.
func IsInfoAlreadySetError(err error) bool {
	return errors.Is(err, ErrInfoAlreadySet)
}
