package exporter

import "errors"

// Common exporter errors
var (
	// ErrUnexpectedStatus is returned (wrapped, with the received status)
	// when a push-gateway upload is answered with a non-success status code.
	ErrUnexpectedStatus = errors.New("exporter: push gateway returned non-success status")
)

// IsUnexpectedStatusError checks if the error reports a non-success
// push-gateway response.
func IsUnexpectedStatusError(err error) bool {
	return errors.Is(err, ErrUnexpectedStatus)
}
