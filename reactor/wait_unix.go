//go:build unix

// File: reactor/wait_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One-shot readiness probe on a single descriptor, independent of any
// loop instance.

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/api"
)

// Wait blocks until fd becomes ready for the requested mask or timeout
// elapses, and returns the observed readiness. None means the timeout
// expired. A negative timeout blocks until readiness. Errors and
// hangups report the descriptor writable so callers notice promptly.
func Wait(fd int, mask api.Mask, timeout time.Duration) (api.Mask, error) {
	pfd := []unix.PollFd{{Fd: int32(fd)}}
	if mask&api.Readable != 0 {
		pfd[0].Events |= unix.POLLIN
	}
	if mask&api.Writable != 0 {
		pfd[0].Events |= unix.POLLOUT
	}
	ms := -1
	if timeout >= 0 {
		// Round up so a sub-millisecond timeout still waits.
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	n, err := unix.Poll(pfd, ms)
	if err != nil {
		return api.None, fmt.Errorf("poll fd %d: %w", fd, err)
	}
	if n == 0 {
		return api.None, nil
	}
	var ret api.Mask
	revents := pfd[0].Revents
	if revents&unix.POLLIN != 0 {
		ret |= api.Readable
	}
	if revents&unix.POLLOUT != 0 {
		ret |= api.Writable
	}
	if revents&(unix.POLLERR|unix.POLLHUP) != 0 {
		ret |= api.Writable
	}
	return ret, nil
}
