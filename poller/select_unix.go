//go:build unix

// File: poller/select_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// select(2) fallback backend. Available on every Unix platform, used as
// the default only where neither epoll nor kqueue exists. Capacity is
// bounded by FD_SETSIZE regardless of the requested setsize.

package poller

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/api"
)

type selectPoller struct {
	rfds, wfds unix.FdSet
	masks      []api.Mask
	maxfd      int
}

// NewSelect creates a select backend sized for setsize descriptors.
func NewSelect(setsize int) (api.Poller, error) {
	if setsize <= 0 {
		return nil, api.ErrInvalidArgument
	}
	if setsize > unix.FD_SETSIZE {
		return nil, fmt.Errorf("setsize %d over FD_SETSIZE: %w", setsize, api.ErrCapacityExceeded)
	}
	p := &selectPoller{
		masks: make([]api.Mask, setsize),
		maxfd: -1,
	}
	p.rfds.Zero()
	p.wfds.Zero()
	return p, nil
}

func (p *selectPoller) Name() string { return "select" }

// AddWatch merges mask into the interest set for fd.
func (p *selectPoller) AddWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) {
		return fmt.Errorf("fd %d: %w", fd, api.ErrCapacityExceeded)
	}
	if mask&api.Readable != 0 {
		p.rfds.Set(fd)
	}
	if mask&api.Writable != 0 {
		p.wfds.Set(fd)
	}
	p.masks[fd] |= mask
	if fd > p.maxfd {
		p.maxfd = fd
	}
	return nil
}

// RemoveWatch clears mask from the interest set for fd.
func (p *selectPoller) RemoveWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) || p.masks[fd] == api.None {
		return nil
	}
	if mask&api.Readable != 0 {
		p.rfds.Clear(fd)
	}
	if mask&api.Writable != 0 {
		p.wfds.Clear(fd)
	}
	p.masks[fd] &^= mask
	if fd == p.maxfd && p.masks[fd] == api.None {
		j := p.maxfd - 1
		for ; j >= 0; j-- {
			if p.masks[j] != api.None {
				break
			}
		}
		p.maxfd = j
	}
	return nil
}

// Poll blocks up to timeout and reports ready descriptors into fired.
func (p *selectPoller) Poll(timeout time.Duration, fired []api.FiredEvent) (int, error) {
	// select mutates its sets, so work on copies of the interest sets.
	rfds := p.rfds
	wfds := p.wfds
	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(int64(timeout))
		tv = &t
	}
	n, err := unix.Select(p.maxfd+1, &rfds, &wfds, nil, tv)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("select: %w", err)
	}
	if n <= 0 {
		return 0, nil
	}
	count := 0
	for fd := 0; fd <= p.maxfd && count < len(fired); fd++ {
		if p.masks[fd] == api.None {
			continue
		}
		var mask api.Mask
		if p.masks[fd]&api.Readable != 0 && rfds.IsSet(fd) {
			mask |= api.Readable
		}
		if p.masks[fd]&api.Writable != 0 && wfds.IsSet(fd) {
			mask |= api.Writable
		}
		if mask == api.None {
			continue
		}
		fired[count] = api.FiredEvent{Fd: fd, Mask: mask}
		count++
	}
	return count, nil
}

// Resize re-dimensions the backend to track setsize descriptors.
func (p *selectPoller) Resize(setsize int) error {
	if setsize <= 0 {
		return api.ErrInvalidArgument
	}
	if setsize > unix.FD_SETSIZE {
		return fmt.Errorf("setsize %d over FD_SETSIZE: %w", setsize, api.ErrCapacityExceeded)
	}
	masks := make([]api.Mask, setsize)
	copy(masks, p.masks)
	p.masks = masks
	return nil
}

// Close is a no-op; select holds no kernel handle.
func (p *selectPoller) Close() error { return nil }
