//go:build !unix

// File: reactor/wait_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without poll(2).

package reactor

import (
	"time"

	"github.com/momentics/hioload-reactor/api"
)

// Wait reports that one-shot probes are unsupported on this platform.
func Wait(fd int, mask api.Mask, timeout time.Duration) (api.Mask, error) {
	return api.None, api.ErrNotSupported
}
