//go:build unix && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

// File: poller/new_other_unix.go
// Author: momentics <momentics@gmail.com>
//
// Default backend for Unix platforms without epoll or kqueue.

package poller

import "github.com/momentics/hioload-reactor/api"

// New returns the select fallback on platforms without a native backend.
func New(setsize int) (api.Poller, error) {
	return NewSelect(setsize)
}
