// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event loop container and lifecycle: creation, resize, stop, teardown.

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-reactor/api"
	"github.com/momentics/hioload-reactor/poller"
)

// SleepProc is a hook invoked once per cycle around the poll wait.
type SleepProc func(el *EventLoop)

// Stats holds cumulative loop counters. Values are maintained on the
// loop thread without atomics; read them from the same thread.
type Stats struct {
	Cycles       int64 // event-processing passes
	FileEvents   int64 // fired descriptors dispatched
	TimeEvents   int64 // timer callbacks invoked
	TimersReaped int64 // timers finalized and removed
}

// EventLoop is the state of an event-driven program: the file-event
// table, the fired buffer, the timer list and the platform poller.
type EventLoop struct {
	maxfd           int // highest registered descriptor, -1 if none
	setsize         int
	timeEventNextID int64
	events          []fileEvent
	fired           []api.FiredEvent
	timeEvents      []*timeEvent
	scanDepth       int // nesting depth of active timer scans
	stop            bool
	dontWait        bool
	beforeSleep     SleepProc
	afterSleep      SleepProc
	poller          api.Poller
	stats           Stats
}

// New creates an event loop able to track descriptors in [0, setsize).
// The platform poller is initialized with the same capacity; on failure
// no loop is returned.
func New(setsize int) (*EventLoop, error) {
	if setsize <= 0 {
		return nil, api.ErrInvalidArgument
	}
	p, err := poller.New(setsize)
	if err != nil {
		return nil, fmt.Errorf("create poller: %w", err)
	}
	return &EventLoop{
		maxfd:           -1,
		setsize:         setsize,
		timeEventNextID: 1,
		events:          make([]fileEvent, setsize),
		fired:           make([]api.FiredEvent, setsize),
		poller:          p,
	}, nil
}

// Capacity reports the tracked descriptor capacity (setsize).
func (el *EventLoop) Capacity() int { return el.setsize }

// PollerName reports the identity of the linked poller backend.
func (el *EventLoop) PollerName() string { return el.poller.Name() }

// Stats returns the cumulative loop counters.
func (el *EventLoop) Stats() Stats { return el.stats }

// SetBeforeSleep installs the hook invoked before each poll wait.
func (el *EventLoop) SetBeforeSleep(proc SleepProc) { el.beforeSleep = proc }

// SetAfterSleep installs the hook invoked after each poll wait.
func (el *EventLoop) SetAfterSleep(proc SleepProc) { el.afterSleep = proc }

// SetDontWait forces every subsequent poll to return without blocking.
func (el *EventLoop) SetDontWait(on bool) { el.dontWait = on }

// Stop requests termination. The flag is observed at the top of the
// next Main iteration; a cycle already in flight runs to completion.
func (el *EventLoop) Stop() { el.stop = true }

// Resize changes the tracked descriptor capacity. It fails with
// ErrCapacityExceeded if a live registration would fall outside the new
// capacity, and leaves all registrations intact on any failure.
func (el *EventLoop) Resize(setsize int) error {
	if setsize == el.setsize {
		return nil
	}
	if el.maxfd >= setsize {
		return fmt.Errorf("maxfd %d: %w", el.maxfd, api.ErrCapacityExceeded)
	}
	if err := el.poller.Resize(setsize); err != nil {
		return fmt.Errorf("resize poller: %w", err)
	}
	events := make([]fileEvent, setsize)
	copy(events, el.events)
	el.events = events
	// Preserve fired contents: a callback may resize while the dispatch
	// pass is still walking this buffer.
	fired := make([]api.FiredEvent, setsize)
	copy(fired, el.fired)
	el.fired = fired
	el.setsize = setsize
	return nil
}

// Close tears down the loop: every remaining time event is finalized
// exactly once, then the poller is released. The loop must not be used
// afterwards.
func (el *EventLoop) Close() error {
	remaining := el.timeEvents
	el.timeEvents = nil
	for _, te := range remaining {
		if te.finalizer != nil {
			te.finalizer(el, te.clientData)
		}
	}
	el.events = nil
	el.fired = nil
	return el.poller.Close()
}

// Main drives ProcessEvents until Stop is called or a backend error
// surfaces. Both sleep hooks are armed, matching a full server cycle.
func (el *EventLoop) Main() error {
	el.stop = false
	for !el.stop {
		if _, err := el.ProcessEvents(AllEvents | CallBeforeSleep | CallAfterSleep); err != nil {
			return err
		}
	}
	return nil
}
