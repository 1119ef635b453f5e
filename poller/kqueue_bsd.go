//go:build darwin || dragonfly || freebsd || netbsd || openbsd

// File: poller/kqueue_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// kqueue(2) backend for Darwin and the BSDs. Read and write interest are
// separate kernel filters, so a single poll pass can report the same
// descriptor twice; Poll merges those into one fired entry per fd.

package poller

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-reactor/api"
)

type kqueuePoller struct {
	kqfd   int
	events []unix.Kevent_t
	masks  []api.Mask
	// Per-pass merge state: scratch collects the union mask per fd,
	// touched remembers which slots to reset afterwards.
	scratch []api.Mask
	touched []int
}

// New returns the default backend for kqueue platforms.
func New(setsize int) (api.Poller, error) {
	return NewKqueue(setsize)
}

// NewKqueue creates a kqueue backend sized for setsize descriptors.
func NewKqueue(setsize int) (api.Poller, error) {
	if setsize <= 0 {
		return nil, api.ErrInvalidArgument
	}
	kqfd, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue: %w", err)
	}
	return &kqueuePoller{
		kqfd: kqfd,
		// Two filters per descriptor at worst.
		events:  make([]unix.Kevent_t, setsize*2),
		masks:   make([]api.Mask, setsize),
		scratch: make([]api.Mask, setsize),
		touched: make([]int, 0, setsize),
	}, nil
}

func (p *kqueuePoller) Name() string { return "kqueue" }

// AddWatch merges mask into the interest set for fd.
func (p *kqueuePoller) AddWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) {
		return fmt.Errorf("fd %d: %w", fd, api.ErrCapacityExceeded)
	}
	changes := make([]unix.Kevent_t, 0, 2)
	if mask&api.Readable != 0 {
		var ev unix.Kevent_t
		unix.SetKevent(&ev, fd, unix.EVFILT_READ, unix.EV_ADD)
		changes = append(changes, ev)
	}
	if mask&api.Writable != 0 {
		var ev unix.Kevent_t
		unix.SetKevent(&ev, fd, unix.EVFILT_WRITE, unix.EV_ADD)
		changes = append(changes, ev)
	}
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kqfd, changes, nil, nil); err != nil {
			return fmt.Errorf("kevent add fd %d: %w", fd, err)
		}
	}
	p.masks[fd] |= mask
	return nil
}

// RemoveWatch clears mask from the interest set for fd. Only filters
// actually registered are deleted, so clearing an absent bit is a no-op.
func (p *kqueuePoller) RemoveWatch(fd int, mask api.Mask) error {
	if fd < 0 || fd >= len(p.masks) || p.masks[fd] == api.None {
		return nil
	}
	drop := mask & p.masks[fd]
	changes := make([]unix.Kevent_t, 0, 2)
	if drop&api.Readable != 0 {
		var ev unix.Kevent_t
		unix.SetKevent(&ev, fd, unix.EVFILT_READ, unix.EV_DELETE)
		changes = append(changes, ev)
	}
	if drop&api.Writable != 0 {
		var ev unix.Kevent_t
		unix.SetKevent(&ev, fd, unix.EVFILT_WRITE, unix.EV_DELETE)
		changes = append(changes, ev)
	}
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kqfd, changes, nil, nil); err != nil {
			return fmt.Errorf("kevent del fd %d: %w", fd, err)
		}
	}
	p.masks[fd] &^= mask
	return nil
}

// Poll blocks up to timeout and reports ready descriptors into fired.
func (p *kqueuePoller) Poll(timeout time.Duration, fired []api.FiredEvent) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}
	n, err := unix.Kevent(p.kqfd, nil, p.events, ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("kevent wait: %w", err)
	}
	for i := 0; i < n; i++ {
		e := &p.events[i]
		fd := int(e.Ident)
		if fd < 0 || fd >= len(p.scratch) {
			continue
		}
		var mask api.Mask
		switch e.Filter {
		case unix.EVFILT_READ:
			mask = api.Readable
		case unix.EVFILT_WRITE:
			mask = api.Writable
		}
		if mask == api.None {
			continue
		}
		if p.scratch[fd] == api.None {
			p.touched = append(p.touched, fd)
		}
		p.scratch[fd] |= mask
	}
	count := 0
	for _, fd := range p.touched {
		if count < len(fired) {
			fired[count] = api.FiredEvent{Fd: fd, Mask: p.scratch[fd]}
			count++
		}
		p.scratch[fd] = api.None
	}
	p.touched = p.touched[:0]
	return count, nil
}

// Resize re-dimensions the backend to track setsize descriptors.
func (p *kqueuePoller) Resize(setsize int) error {
	if setsize <= 0 {
		return api.ErrInvalidArgument
	}
	masks := make([]api.Mask, setsize)
	copy(masks, p.masks)
	p.events = make([]unix.Kevent_t, setsize*2)
	p.masks = masks
	p.scratch = make([]api.Mask, setsize)
	p.touched = make([]int, 0, setsize)
	return nil
}

// Close releases the kqueue instance.
func (p *kqueuePoller) Close() error {
	return unix.Close(p.kqfd)
}
