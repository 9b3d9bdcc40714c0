// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package engine

import (
	"github.com/aegisproject/aegisdeck/internal/model"
)

// Event is one normalized input delivered to the engine loop. All transports
// and the command emitter funnel through this taxonomy; the loop applies
// events one at a time, so state transitions never race.
type Event interface {
	isEvent()
}

// RawMessage is a transport-tagged raw payload: a broker message or a locally
// published command. Topic uses the canonical slash form (aegis/stats,
// aegis/node/<id>/set); the broker session maps NATS subjects to this form at
// the boundary.
type RawMessage struct {
	Topic string
	Body  []byte
}

func (RawMessage) isEvent() {}

// StatusSnapshot carries a Guardian aggregate status body, from either the
// status poll loop or a push-stream status fragment. Both normalize
// identically into a GuardianStatus partial merge.
type StatusSnapshot struct {
	Body []byte
}

func (StatusSnapshot) isEvent() {}

// StatsSnapshot carries one decoded per-client stats poll. The engine derives
// auth events by diffing the blocked set against the previous snapshot.
type StatsSnapshot struct {
	Clients []ClientStat
}

func (StatsSnapshot) isEvent() {}

// ClientStat is one client row from the Guardian /stats endpoint.
type ClientStat struct {
	IP            string  `json:"ip"`
	PacketsPerSec float64 `json:"packetsPerSec"`
	Blocked       bool    `json:"blocked"`
}

// StreamMessage is one push-stream message body. It may be a typed auth event
// or a raw status fragment; the normalizer dispatches on shape.
type StreamMessage struct {
	Body []byte
}

func (StreamMessage) isEvent() {}

// SessionEvent mirrors a transport channel's connectivity state change.
type SessionEvent struct {
	Channel model.Channel
	State   model.SessionState
}

func (SessionEvent) isEvent() {}

// ReachabilityEvent reports the result of a gateway reachability probe.
type ReachabilityEvent struct {
	Reachable bool
}

func (ReachabilityEvent) isEvent() {}

// OutcomeKind classifies the result of applying one event.
type OutcomeKind int

const (
	// OutcomeApplied means the event mutated state.
	OutcomeApplied OutcomeKind = iota
	// OutcomeDropped means the payload was malformed and discarded. The
	// enclosing loop is never aborted; the drop is the whole effect.
	OutcomeDropped
	// OutcomeIgnored means the event was well-formed but matched nothing:
	// an unknown device id or an unrecognized topic. Not an error.
	OutcomeIgnored
)

// Outcome is the typed result of applying one event. Swallowed-error paths
// are intentional resilience; the Outcome exists so tests can assert on them
// instead of relying on the absence of a failure.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func applied() Outcome            { return Outcome{Kind: OutcomeApplied} }
func dropped(err error) Outcome   { return Outcome{Kind: OutcomeDropped, Err: err} }
func ignored() Outcome            { return Outcome{Kind: OutcomeIgnored} }
