//go:build linux

// File: poller/epoll_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) backend. Level-triggered, one epoll instance per loop.

package poller

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/api"
)

type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
	masks  []api.Mask // interest per fd, drives ADD vs MOD vs DEL
}

// New returns the default backend for Linux.
func New(setsize int) (api.Poller, error) {
	return NewEpoll(setsize)
}

// NewEpoll creates an epoll backend sized for setsize descriptors.
func NewEpoll(setsize int) (api.Poller, error) {
	if setsize <= 0 {
		return nil, api.ErrInvalidArgument
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, setsize),
		masks:  make([]api.Mask, setsize),
	}, nil
}

func (p *epollPoller) Name() string { return "epoll" }

func epollEvents(mask api.Mask) uint32 {
	var ev uint32
	if mask&api.Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if mask&api.Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// AddWatch merges mask into the interest set for fd.
func (p *epollPoller) AddWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) {
		return fmt.Errorf("fd %d: %w", fd, api.ErrCapacityExceeded)
	}
	op := unix.EPOLL_CTL_MOD
	if p.masks[fd] == api.None {
		op = unix.EPOLL_CTL_ADD
	}
	merged := p.masks[fd] | mask
	ev := unix.EpollEvent{Events: epollEvents(merged), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, op, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}
	p.masks[fd] = merged
	return nil
}

// RemoveWatch clears mask from the interest set for fd.
func (p *epollPoller) RemoveWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) || p.masks[fd] == api.None {
		return nil
	}
	remaining := p.masks[fd] &^ mask
	var err error
	if remaining == api.None {
		err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	} else {
		ev := unix.EpollEvent{Events: epollEvents(remaining), Fd: int32(fd)}
		err = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
	}
	if err != nil {
		return fmt.Errorf("epoll_ctl del fd %d: %w", fd, err)
	}
	p.masks[fd] = remaining
	return nil
}

// Poll blocks up to timeout and reports ready descriptors into fired.
func (p *epollPoller) Poll(timeout time.Duration, fired []api.FiredEvent) (int, error) {
	ms := -1
	if timeout >= 0 {
		// Round up so a sub-millisecond timer does not spin the loop.
		ms = int((timeout + time.Millisecond - 1) / time.Millisecond)
	}
	events := p.events
	if len(fired) < len(events) {
		events = events[:len(fired)]
	}
	n, err := unix.EpollWait(p.epfd, events, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		e := &events[i]
		var mask api.Mask
		if e.Events&unix.EPOLLIN != 0 {
			mask |= api.Readable
		}
		if e.Events&unix.EPOLLOUT != 0 {
			mask |= api.Writable
		}
		// Errors and hangups wake both directions so handlers notice.
		if e.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			mask |= api.Readable | api.Writable
		}
		fired[i] = api.FiredEvent{Fd: int(e.Fd), Mask: mask}
	}
	return n, nil
}

// Resize re-dimensions the backend to track setsize descriptors.
func (p *epollPoller) Resize(setsize int) error {
	if setsize <= 0 {
		return api.ErrInvalidArgument
	}
	events := make([]unix.EpollEvent, setsize)
	masks := make([]api.Mask, setsize)
	copy(masks, p.masks)
	p.events = events
	p.masks = masks
	return nil
}

// Close releases the epoll instance.
func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
