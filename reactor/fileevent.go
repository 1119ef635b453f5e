// File: reactor/fileevent.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// File-event table: O(1) registration, lookup and removal keyed by
// descriptor number.

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-reactor/api"
)

// FileProc handles a readiness dispatch for one descriptor. mask is the
// readiness reported by the poller for this pass. clientData is the
// value supplied at registration; the loop never inspects it.
type FileProc func(el *EventLoop, fd int, clientData any, mask api.Mask)

// fileEvent is one slot of the descriptor-indexed table. A slot with
// mask None is absent and may be reused freely.
type fileEvent struct {
	mask       api.Mask
	readProc   FileProc
	writeProc  FileProc
	clientData any
}

// AddFileEvent registers proc for the given readiness bits on fd,
// merging mask into any existing registration. A poller failure leaves
// the table entry unchanged.
func (el *EventLoop) AddFileEvent(fd int, mask api.Mask, proc FileProc, clientData any) error {
	if fd < 0 || fd >= el.setsize {
		return fmt.Errorf("fd %d: %w", fd, api.ErrCapacityExceeded)
	}
	fe := &el.events[fd]
	if err := el.poller.AddWatch(fd, mask); err != nil {
		return err
	}
	fe.mask |= mask
	if mask&api.Readable != 0 {
		fe.readProc = proc
	}
	if mask&api.Writable != 0 {
		fe.writeProc = proc
	}
	fe.clientData = clientData
	if fd > el.maxfd {
		el.maxfd = fd
	}
	return nil
}

// RemoveFileEvent clears the given readiness bits on fd. Removing bits
// that are not set is a no-op. When the last bit is cleared the slot
// becomes absent and, if fd was the high-water mark, maxfd is rescanned
// downward.
func (el *EventLoop) RemoveFileEvent(fd int, mask api.Mask) error {
	if fd < 0 || fd >= el.setsize {
		return nil
	}
	fe := &el.events[fd]
	if fe.mask == api.None {
		return nil
	}
	// Dropping write interest always drops the barrier with it.
	if mask&api.Writable != 0 {
		mask |= api.Barrier
	}
	if err := el.poller.RemoveWatch(fd, mask); err != nil {
		return err
	}
	fe.mask &^= mask
	if fe.mask&api.Readable == 0 {
		fe.readProc = nil
	}
	if fe.mask&api.Writable == 0 {
		fe.writeProc = nil
	}
	if fe.mask == api.None {
		fe.clientData = nil
		if fd == el.maxfd {
			j := el.maxfd - 1
			for ; j >= 0; j-- {
				if el.events[j].mask != api.None {
					break
				}
			}
			el.maxfd = j
		}
	}
	return nil
}

// FileEventMask reports the registered mask for fd, or None if the
// descriptor is absent or out of range.
func (el *EventLoop) FileEventMask(fd int) api.Mask {
	if fd < 0 || fd >= el.setsize {
		return api.None
	}
	return el.events[fd].mask
}
