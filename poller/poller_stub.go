//go:build !unix

// File: poller/poller_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a readiness backend.

package poller

import "github.com/momentics/hioload-reactor/api"

// New reports that no backend exists for this platform.
func New(setsize int) (api.Poller, error) {
	return nil, api.ErrNotSupported
}
