// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package transport

import "sync/atomic"

// Gate is the shared reachability flag set by the probe and consulted by the
// stream session and the poll loops before each attempt. It starts closed;
// the probe runs its first check immediately on start, so the LAN-only
// channels open after at most one probe round trip.
type Gate struct {
	open atomic.Bool
}

// NewGate returns a gate in the closed position.
func NewGate() *Gate {
	return &Gate{}
}

// Open reports whether the gateway was reachable at the last probe.
func (g *Gate) Open() bool { return g.open.Load() }

// Set records the latest probe result.
func (g *Gate) Set(open bool) { g.open.Store(open) }
