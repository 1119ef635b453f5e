// File: reactor/timeevent.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Time-event list. Events are scanned linearly in insertion order;
// deletion during a scan marks a tombstone which is reaped once no scan
// is active and the event is not executing. The refcount guards events
// invoked recursively through nested ProcessEvents calls.

package reactor

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-reactor/api"
)

// NoMore cancels a time event when returned from its TimeProc. Any
// negative duration has the same effect.
const NoMore time.Duration = -1

// TimeProc handles a due time event. The return value reschedules the
// event after the given delay, or cancels it when negative.
type TimeProc func(el *EventLoop, id int64, clientData any) time.Duration

// FinalizerProc runs exactly once when a time event is removed, whatever
// the removal cause.
type FinalizerProc func(el *EventLoop, clientData any)

type timeEvent struct {
	id         int64
	when       time.Time
	proc       TimeProc
	finalizer  FinalizerProc
	clientData any
	refcount   int
	deleted    bool
}

// AddTimeEvent schedules proc to fire once delay has elapsed and returns
// the event id. Ids are strictly increasing and never reused within a
// loop's lifetime.
func (el *EventLoop) AddTimeEvent(delay time.Duration, proc TimeProc, clientData any, finalizer FinalizerProc) int64 {
	id := el.timeEventNextID
	el.timeEventNextID++
	el.timeEvents = append(el.timeEvents, &timeEvent{
		id:         id,
		when:       time.Now().Add(delay),
		proc:       proc,
		finalizer:  finalizer,
		clientData: clientData,
	})
	return id
}

// RemoveTimeEvent cancels the time event with the given id. An event
// currently executing, or encountered while a scan is active, is only
// marked for deletion and reaped after the scan; otherwise it is removed
// and finalized immediately. Unknown or already-cancelled ids report
// ErrNotFound.
func (el *EventLoop) RemoveTimeEvent(id int64) error {
	for _, te := range el.timeEvents {
		if te.id != id || te.deleted {
			continue
		}
		te.deleted = true
		if el.scanDepth == 0 && te.refcount == 0 {
			el.reapTimeEvents()
		}
		return nil
	}
	return fmt.Errorf("time event %d: %w", id, api.ErrNotFound)
}

// nearestTimer reports the earliest due time among live events.
func (el *EventLoop) nearestTimer() (time.Time, bool) {
	var when time.Time
	found := false
	for _, te := range el.timeEvents {
		if te.deleted {
			continue
		}
		if !found || te.when.Before(when) {
			when = te.when
			found = true
		}
	}
	return when, found
}

// processTimeEvents fires every due event once and returns the count.
// Events created during the scan carry an id above maxID and are not
// considered until the next scan.
func (el *EventLoop) processTimeEvents() int {
	processed := 0
	maxID := el.timeEventNextID - 1
	el.scanDepth++
	now := time.Now()
	for _, te := range el.timeEvents {
		if te.deleted || te.id > maxID {
			continue
		}
		if te.when.After(now) {
			continue
		}
		te.refcount++
		again := te.proc(el, te.id, te.clientData)
		te.refcount--
		processed++
		now = time.Now()
		if again < 0 {
			te.deleted = true
		} else if !te.deleted {
			te.when = now.Add(again)
		}
	}
	el.scanDepth--
	if el.scanDepth == 0 {
		el.reapTimeEvents()
	}
	return processed
}

// reapTimeEvents removes every tombstoned, non-executing event and runs
// its finalizer. The list is compacted before finalizers run so a
// finalizer may itself schedule or cancel events.
func (el *EventLoop) reapTimeEvents() {
	dead := 0
	for _, te := range el.timeEvents {
		if te.deleted && te.refcount == 0 {
			dead++
		}
	}
	if dead == 0 {
		return
	}
	kept := make([]*timeEvent, 0, len(el.timeEvents)-dead)
	doomed := make([]*timeEvent, 0, dead)
	for _, te := range el.timeEvents {
		if te.deleted && te.refcount == 0 {
			doomed = append(doomed, te)
			continue
		}
		kept = append(kept, te)
	}
	el.timeEvents = kept
	for _, te := range doomed {
		if te.finalizer != nil {
			te.finalizer(el, te.clientData)
		}
		el.stats.TimersReaped++
	}
}
