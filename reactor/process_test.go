//go:build unix

// File: reactor/process_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dispatch-cycle semantics: readiness dispatch, barrier suppression,
// table mutation from inside callbacks, hooks, and the combined
// file+timer cadence.

package reactor

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/api"
)

func drain(t *testing.T, fd int) {
	t.Helper()
	buf := make([]byte, 512)
	if _, err := unix.Read(fd, buf); err != nil {
		t.Fatalf("drain fd %d: %v", fd, err)
	}
}

func TestReadableDispatch(t *testing.T) {
	el := newLoop(t, 64)
	fd, peer := makeSocketpair(t)
	reads := 0
	err := el.AddFileEvent(fd, api.Readable, func(el *EventLoop, fd int, _ any, mask api.Mask) {
		reads++
		if mask&api.Readable == 0 {
			t.Errorf("read dispatch with mask %v", mask)
		}
		drain(t, fd)
	}, nil)
	if err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}

	if n, _ := el.ProcessEvents(FileEvents | DontWait); n != 0 || reads != 0 {
		t.Fatalf("dispatch on idle socket: n=%d reads=%d", n, reads)
	}
	if _, err := unix.Write(peer, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if reads != 1 {
		t.Fatalf("read callback fired %d times, want 1", reads)
	}
	if n, _ := el.ProcessEvents(FileEvents | DontWait); n != 0 || reads != 1 {
		t.Fatalf("read callback fired with no data: n=%d reads=%d", n, reads)
	}
}

// A descriptor with Readable+Writable+Barrier whose poll reports both
// bits dispatches only the read that pass; the write fires next pass.
func TestBarrierSuppressesWriteSamePass(t *testing.T) {
	el := newLoop(t, 64)
	fd, peer := makeSocketpair(t)
	var order []string
	err := el.AddFileEvent(fd, api.Readable, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		order = append(order, "read")
		drain(t, fd)
	}, nil)
	if err != nil {
		t.Fatalf("AddFileEvent readable: %v", err)
	}
	err = el.AddFileEvent(fd, api.Writable|api.Barrier, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		order = append(order, "write")
	}, nil)
	if err != nil {
		t.Fatalf("AddFileEvent writable: %v", err)
	}

	// A socketpair end with inbound data is readable and writable in
	// the same pass.
	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(order) != 1 || order[0] != "read" {
		t.Fatalf("barrier pass dispatched %v, want [read]", order)
	}
	// Data drained: the next pass is write-only and the write may fire.
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(order) != 2 || order[1] != "write" {
		t.Fatalf("post-barrier pass dispatched %v, want [read write]", order)
	}
}

func TestNoBarrierBothDispatchSamePass(t *testing.T) {
	el := newLoop(t, 64)
	fd, peer := makeSocketpair(t)
	var order []string
	el.AddFileEvent(fd, api.Readable, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		order = append(order, "read")
		drain(t, fd)
	}, nil)
	el.AddFileEvent(fd, api.Writable, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		order = append(order, "write")
	}, nil)

	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if len(order) != 2 || order[0] != "read" || order[1] != "write" {
		t.Fatalf("dispatched %v, want [read write]", order)
	}
}

// A callback that unregisters another descriptor fired in the same pass
// must prevent the stale dispatch.
func TestCallbackUnregistersPendingSibling(t *testing.T) {
	el := newLoop(t, 64)
	a, peerA := makeSocketpair(t)
	b, peerB := makeSocketpair(t)
	ran := 0
	mkProc := func(other int) FileProc {
		return func(el *EventLoop, fd int, _ any, _ api.Mask) {
			ran++
			drain(t, fd)
			if err := el.RemoveFileEvent(other, api.Readable); err != nil {
				t.Errorf("unregister sibling: %v", err)
			}
		}
	}
	if err := el.AddFileEvent(a, api.Readable, mkProc(b), nil); err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}
	if err := el.AddFileEvent(b, api.Readable, mkProc(a), nil); err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}
	if _, err := unix.Write(peerA, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := unix.Write(peerB, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if ran != 1 {
		t.Fatalf("%d callbacks ran, want 1: the survivor must suppress the sibling", ran)
	}
}

// A callback unregistering its own descriptor mid-pass must not make
// the write step dispatch a stale entry.
func TestCallbackUnregistersSelf(t *testing.T) {
	el := newLoop(t, 64)
	fd, peer := makeSocketpair(t)
	writes := 0
	el.AddFileEvent(fd, api.Readable, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		drain(t, fd)
		if err := el.RemoveFileEvent(fd, api.Readable|api.Writable); err != nil {
			t.Errorf("self unregister: %v", err)
		}
	}, nil)
	el.AddFileEvent(fd, api.Writable, func(*EventLoop, int, any, api.Mask) {
		writes++
	}, nil)

	if _, err := unix.Write(peer, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if writes != 0 {
		t.Fatalf("write callback fired %d times on an unregistered entry", writes)
	}
	if got := el.FileEventMask(fd); got != api.None {
		t.Errorf("mask after self unregister = %v, want none", got)
	}
}

// Resizing the loop from inside a callback must not lose the fired
// entries the pass has not dispatched yet.
func TestCallbackResizesMidDispatch(t *testing.T) {
	el := newLoop(t, 64)
	a, peerA := makeSocketpair(t)
	b, peerB := makeSocketpair(t)
	ran := 0
	proc := func(el *EventLoop, fd int, _ any, _ api.Mask) {
		ran++
		drain(t, fd)
		if err := el.Resize(256); err != nil {
			t.Errorf("resize from callback: %v", err)
		}
	}
	if err := el.AddFileEvent(a, api.Readable, proc, nil); err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}
	if err := el.AddFileEvent(b, api.Readable, proc, nil); err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}
	if _, err := unix.Write(peerA, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := unix.Write(peerB, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := el.ProcessEvents(FileEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if ran != 2 {
		t.Fatalf("callbacks ran %d times in the pass, want 2", ran)
	}
	if el.Capacity() != 256 {
		t.Errorf("Capacity() = %d after resize, want 256", el.Capacity())
	}
}

func TestHooksRunOncePerPass(t *testing.T) {
	el := newLoop(t, 16)
	before, after := 0, 0
	el.SetBeforeSleep(func(*EventLoop) { before++ })
	el.SetAfterSleep(func(*EventLoop) { after++ })

	// No descriptors registered: hooks still run when armed.
	if _, err := el.ProcessEvents(AllEvents | DontWait | CallBeforeSleep | CallAfterSleep); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if before != 1 || after != 1 {
		t.Fatalf("hooks ran before=%d after=%d on empty loop, want 1/1", before, after)
	}
	// Unarmed pass leaves the hooks alone.
	if _, err := el.ProcessEvents(AllEvents | DontWait); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if before != 1 || after != 1 {
		t.Fatalf("unarmed pass ran hooks: before=%d after=%d", before, after)
	}
}

func TestProcessEventsNoFlags(t *testing.T) {
	el := newLoop(t, 16)
	n, err := el.ProcessEvents(DontWait)
	if err != nil || n != 0 {
		t.Fatalf("ProcessEvents(no event flags) = %d, %v, want 0, nil", n, err)
	}
}

// Combined scenario: one readable descriptor plus a 50ms repeating
// timer, driven for ~200ms. The timer lands near four fires and the
// read callback fires exactly once per actual readiness event.
func TestFileAndTimerCadence(t *testing.T) {
	el := newLoop(t, 128)
	fd, peer := makeSocketpair(t)
	reads := 0
	err := el.AddFileEvent(fd, api.Readable, func(el *EventLoop, fd int, _ any, _ api.Mask) {
		reads++
		drain(t, fd)
	}, nil)
	if err != nil {
		t.Fatalf("AddFileEvent: %v", err)
	}
	timerFires := 0
	el.AddTimeEvent(50*time.Millisecond, func(*EventLoop, int64, any) time.Duration {
		timerFires++
		return 50 * time.Millisecond
	}, nil, nil)

	if _, err := unix.Write(peer, []byte("once")); err != nil {
		t.Fatalf("write: %v", err)
	}
	start := time.Now()
	for time.Since(start) < 205*time.Millisecond {
		if _, err := el.ProcessEvents(AllEvents); err != nil {
			t.Fatalf("ProcessEvents: %v", err)
		}
	}
	if reads != 1 {
		t.Errorf("read callback fired %d times for one readiness event", reads)
	}
	if timerFires < 3 || timerFires > 5 {
		t.Errorf("timer fired %d times in ~200ms, want 4±1", timerFires)
	}
	s := el.Stats()
	if s.FileEvents == 0 || s.TimeEvents == 0 || s.Cycles == 0 {
		t.Errorf("stats not accumulated: %+v", s)
	}
}
