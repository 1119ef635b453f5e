// File: api/poller.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral readiness multiplexer interface. Exactly one backend
// is linked per build; see the poller package for the implementations.

package api

import "time"

// Poller is the OS readiness-notification backend behind an event loop.
//
// Implementations are not safe for concurrent use: the owning loop
// drives every call from its own thread.
type Poller interface {
	// AddWatch merges mask into the interest set for fd. The Barrier bit
	// is a dispatch policy and carries no kernel-side meaning; backends
	// record it but only watch the Readable and Writable bits.
	AddWatch(fd int, mask Mask) error

	// RemoveWatch clears mask from the interest set for fd. Clearing the
	// last bit drops the descriptor from the kernel watch list.
	RemoveWatch(fd int, mask Mask) error

	// Poll blocks up to timeout and fills fired with at most one entry
	// per ready descriptor, returning the entry count. timeout < 0
	// blocks until an event arrives; 0 returns immediately. A signal
	// interruption reports zero events, not an error.
	Poll(timeout time.Duration, fired []FiredEvent) (int, error)

	// Resize re-dimensions the backend to track setsize descriptors.
	Resize(setsize int) error

	// Name reports the backend identity, e.g. "epoll" or "kqueue".
	Name() string

	// Close releases the kernel resources held by the backend.
	Close() error
}
