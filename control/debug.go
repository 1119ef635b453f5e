// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry for reactor hosts: named inspection hooks that
// report point-in-time loop state on demand.

package control

import (
	"sync"

	"github.com/momentics/hioload-reactor/reactor"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// RegisterLoop installs standard probes for one event loop. The probes
// read loop state without synchronization, so DumpState must be called
// from the loop thread.
func (dp *DebugProbes) RegisterLoop(name string, el *reactor.EventLoop) {
	dp.RegisterProbe(name+".poller", func() any { return el.PollerName() })
	dp.RegisterProbe(name+".capacity", func() any { return el.Capacity() })
	dp.RegisterProbe(name+".stats", func() any { return el.Stats() })
}

// DumpState returns the output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
