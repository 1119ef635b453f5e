// File: api/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness masks and fired-event values shared between the event loop
// and the platform pollers.

package api

import "strings"

// Mask is a bit set of readiness interests on a descriptor.
type Mask int

const (
	// None marks a table slot with no registered interest.
	None Mask = 0
	// Readable fires when the descriptor is readable.
	Readable Mask = 1 << 0
	// Writable fires when the descriptor is writable.
	Writable Mask = 1 << 1
	// Barrier, combined with Writable, keeps the write dispatch out of
	// any cycle in which the read dispatch already fired for the same
	// descriptor. Useful to persist state before sending replies.
	Barrier Mask = 1 << 2
)

// String renders the mask as "r", "w", "rw", "rwb" etc. for logs.
func (m Mask) String() string {
	if m == None {
		return "none"
	}
	var b strings.Builder
	if m&Readable != 0 {
		b.WriteByte('r')
	}
	if m&Writable != 0 {
		b.WriteByte('w')
	}
	if m&Barrier != 0 {
		b.WriteByte('b')
	}
	return b.String()
}

// FiredEvent reports one ready descriptor for a single poll pass. It is
// produced by a Poller and consumed exactly once by the dispatch cycle.
type FiredEvent struct {
	Fd   int
	Mask Mask
}
