// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the contracts shared by the event loop and the
// platform pollers: readiness masks, fired-event values, the Poller
// multiplexer interface and the library's error values.
package api
