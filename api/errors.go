// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error values for the hioload-reactor library. Backend failures
// wrap the underlying OS error with %w so callers can unwrap the errno.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrCapacityExceeded reports a descriptor at or beyond the loop's
	// configured capacity, or a resize that would truncate live
	// registrations.
	ErrCapacityExceeded = fmt.Errorf("descriptor capacity exceeded")
	// ErrNotFound reports a lookup or deletion of an unknown event.
	ErrNotFound = fmt.Errorf("event not found")
	// ErrInvalidArgument reports a malformed argument such as a
	// non-positive capacity.
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	// ErrNotSupported reports an operation with no implementation on the
	// current platform.
	ErrNotSupported = fmt.Errorf("operation not supported")
)
