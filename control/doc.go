// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for reactor hosts.
// The reactor core itself is observation-free; hosts publish loop
// counters here from a loop hook or a periodic time event.
package control
