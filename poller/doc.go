// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package poller provides the platform readiness backends behind the
// event loop: epoll on Linux, kqueue on Darwin and the BSDs, and a
// select(2) fallback for the remaining Unix platforms. New returns the
// best backend for the build target; NewSelect is additionally exported
// on every Unix platform so hosts and tests can compare backends.
package poller
