// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements a single-threaded, callback-driven I/O and
// timer event loop. A loop multiplexes readiness notifications across
// registered descriptors and a set of scheduled timers, dispatching
// user callbacks in one execution context with no preemption.
//
// All methods of an EventLoop must be called from the thread that drives
// ProcessEvents; the loop takes no locks. Multiple independent loops may
// coexist, one per goroutine, sharing no state.
package reactor
