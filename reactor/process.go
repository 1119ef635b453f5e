// File: reactor/process.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The poll/dispatch cycle. One ProcessEvents call performs one pass:
// wait in the poller, dispatch fired descriptors, then fire due timers.

package reactor

import (
	"time"

	"github.com/momentics/hioload-reactor/api"
)

// Flags select what a ProcessEvents pass handles.
type Flags int

const (
	// FileEvents enables descriptor readiness dispatch.
	FileEvents Flags = 1 << 0
	// TimeEvents enables the timer scan.
	TimeEvents Flags = 1 << 1
	// AllEvents enables both.
	AllEvents = FileEvents | TimeEvents
	// DontWait makes the poll return immediately instead of blocking.
	DontWait Flags = 1 << 2
	// CallBeforeSleep arms the before-sleep hook for this pass.
	CallBeforeSleep Flags = 1 << 3
	// CallAfterSleep arms the after-sleep hook for this pass.
	CallAfterSleep Flags = 1 << 4
)

// ProcessEvents performs one event-processing pass and returns the
// number of file and time events handled. The wait is bounded by the
// nearest timer deadline when time events are requested; with no timers
// and blocking permitted the poll waits indefinitely.
//
// Within the fired loop the table entry is re-read before each dispatch:
// a callback may unregister its own descriptor or any other, and must
// never cause a stale entry to fire.
func (el *EventLoop) ProcessEvents(flags Flags) (int, error) {
	if flags&AllEvents == 0 {
		return 0, nil
	}
	processed := 0
	el.stats.Cycles++

	// The before-sleep hook runs once per pass when armed, even with no
	// descriptor registered. It is the one place for deferred per-cycle
	// bookkeeping outside the reactor.
	if el.beforeSleep != nil && flags&CallBeforeSleep != 0 {
		el.beforeSleep(el)
	}

	// Skip the poll only when there is nothing to wait for: no
	// descriptors, and either no timer scan requested or a scan that
	// must not block.
	if el.maxfd != -1 || (flags&TimeEvents != 0 && flags&DontWait == 0) {
		timeout := time.Duration(-1)
		if flags&TimeEvents != 0 && flags&DontWait == 0 {
			if when, ok := el.nearestTimer(); ok {
				timeout = time.Until(when)
				if timeout < 0 {
					timeout = 0
				}
			}
		}
		if el.dontWait || flags&DontWait != 0 {
			timeout = 0
		}

		numevents, err := el.poller.Poll(timeout, el.fired)
		if err != nil {
			return processed, err
		}
		if el.afterSleep != nil && flags&CallAfterSleep != 0 {
			el.afterSleep(el)
		}

		for j := 0; j < numevents; j++ {
			fd := el.fired[j].Fd
			mask := el.fired[j].Mask
			if fd >= len(el.events) {
				// An earlier callback shrank the loop under this fd.
				continue
			}
			readFired := false
			fe := &el.events[fd]
			if fe.mask&mask&api.Readable != 0 && fe.readProc != nil {
				fe.readProc(el, fd, fe.clientData, mask)
				readFired = true
			}
			// Re-read: the read callback may have changed the entry.
			if fd >= len(el.events) {
				continue
			}
			fe = &el.events[fd]
			if fe.mask&mask&api.Writable != 0 && fe.writeProc != nil {
				// A barrier defers a write that coincides with a read
				// to a later pass; it never fires in the same pass.
				if !(readFired && fe.mask&api.Barrier != 0) {
					fe.writeProc(el, fd, fe.clientData, mask)
				}
			}
			processed++
			el.stats.FileEvents++
		}
	} else if el.afterSleep != nil && flags&CallAfterSleep != 0 {
		el.afterSleep(el)
	}

	if flags&TimeEvents != 0 {
		n := el.processTimeEvents()
		el.stats.TimeEvents += int64(n)
		processed += n
	}
	return processed, nil
}
