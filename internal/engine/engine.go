// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package engine owns the canonical in-memory dashboard state: the device
// registry, the derived threat level, the rolling traffic and auth-event
// windows, and the Guardian status aggregate.
//
// The engine is a single-goroutine actor. Transports and the command emitter
// submit normalized events to one inbound channel; the loop applies them one
// at a time, so no two updates race and no locking is needed beyond the
// channel itself. Consumers never touch the live state: they read immutable
// snapshots swapped atomically after each applied event.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/metrics"
	"github.com/aegisproject/aegisdeck/internal/model"
	"github.com/aegisproject/aegisdeck/internal/store"
)

// inboxSize bounds the inbound event channel. Transports block briefly when
// the loop falls behind rather than dropping telemetry.
const inboxSize = 256

// Publisher sends a payload over the broker channel. Topics use the
// canonical slash form; the broker session maps them to subjects.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// Snapshot is an immutable view of the engine state at one instant.
type Snapshot struct {
	ThreatLevel model.ThreatLevel                    `json:"threat_level"`
	Devices     map[string]model.Device              `json:"nodes"`
	Traffic     []model.TrafficSample                `json:"traffic"`
	AuthEvents  []model.AuthEvent                    `json:"auth_events"`
	Guardian    *model.GuardianStatus                `json:"guardian_status"`
	Reachable   bool                                 `json:"guardian_reachable"`
	Sessions    map[model.Channel]model.SessionState `json:"sessions"`
}

// state is the loop-owned mutable state. Only the Serve goroutine touches it.
type state struct {
	devices     map[string]model.Device
	forced      model.ThreatLevel // sticky floor set by discrete events
	computed    model.ThreatLevel // recomputed from volume and blocklist
	guardian    model.GuardianStatus
	guardianSet bool
	prevBlocked map[string]struct{}
	traffic     *store.TrafficStore
	auth        *store.AuthStore
	reachable   bool
	sessions    map[model.Channel]model.SessionState
}

// Engine is the state-synchronization core. Construct with New, run with
// Serve (typically under the supervisor tree), and feed through Submit.
type Engine struct {
	inbox chan Event
	done  chan struct{}

	mu        sync.RWMutex
	publisher Publisher
	onUpdate  func(Snapshot)

	snap atomic.Pointer[Snapshot]
	st   *state
	log  zerolog.Logger
}

// New creates an engine seeded with the fixed default device set. Devices are
// never created or destroyed at runtime, only mutated.
func New() *Engine {
	e := &Engine{
		inbox: make(chan Event, inboxSize),
		done:  make(chan struct{}),
		st: &state{
			devices:     defaultDevices(),
			forced:      model.ThreatLow,
			computed:    model.ThreatLow,
			prevBlocked: make(map[string]struct{}),
			traffic:     store.NewTrafficStore(),
			auth:        store.NewAuthStore(),
			sessions: map[model.Channel]model.SessionState{
				model.ChannelBroker: model.SessionConnecting,
				model.ChannelStream: model.SessionDisconnected,
				model.ChannelPoll:   model.SessionDisconnected,
			},
		},
		log: logging.With().Str("component", "engine").Logger(),
	}
	e.swapSnapshot()
	return e
}

// defaultDevices returns the seeded registry contents.
func defaultDevices() map[string]model.Device {
	return map[string]model.Device{
		"node-a": {
			ID: "node-a", Name: "Smart Thermostat", Class: model.ClassThermostat,
			Status: model.DeviceOnline, Addr: "192.168.0.204",
			Attrs: map[string]any{"temp": float64(24), "target": float64(24)},
		},
		"node-b": {
			ID: "node-b", Name: "Office Display", Class: model.ClassDisplay,
			Status: model.DeviceOnline, Addr: "192.168.0.119",
			Attrs: map[string]any{"msg": "Welcome"},
		},
		"node-d": {
			ID: "node-d", Name: "Desk Light", Class: model.ClassLight,
			Status: model.DeviceOnline, Addr: "192.168.0.109",
			Attrs: map[string]any{"state": false},
		},
	}
}

// SetPublisher wires the broker publisher used by Publish. The engine runs
// without one (optimistic local apply still happens; the send outcome is
// recorded as an error).
func (e *Engine) SetPublisher(p Publisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publisher = p
}

// SetOnUpdate registers a callback invoked from the loop after every applied
// event, with the fresh snapshot. Used by the WebSocket hub.
func (e *Engine) SetOnUpdate(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// Serve implements suture.Service: it runs the event loop until the context
// is canceled. After return, late Submit calls are discarded.
func (e *Engine) Serve(ctx context.Context) error {
	e.log.Info().Msg("Engine loop started")
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("Engine loop stopped")
			return ctx.Err()
		case ev := <-e.inbox:
			outcome := e.apply(ev)
			e.recordOutcome(ev, outcome)
			if outcome.Kind == OutcomeApplied {
				e.swapSnapshot()
				e.notify()
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (e *Engine) String() string { return "engine" }

// Submit delivers an event to the loop. It reports false when the engine has
// been torn down; stale responses arriving after teardown are discarded, not
// applied.
func (e *Engine) Submit(ev Event) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- ev:
		return true
	case <-e.done:
		return false
	}
}

// Snapshot returns the current immutable state view.
func (e *Engine) Snapshot() Snapshot {
	return *e.snap.Load()
}

// Publish sends a payload over the broker channel, then immediately feeds the
// same (topic, body) through the normalizer as if it had been received. The
// local view reflects the caller's own action before any network round trip.
func (e *Engine) Publish(topic string, body []byte) error {
	e.mu.RLock()
	pub := e.publisher
	e.mu.RUnlock()

	var sendErr error
	if pub != nil {
		sendErr = pub.Publish(topic, body)
	}
	if sendErr != nil {
		// Optimistic apply proceeds regardless; the broker's built-in
		// retry owns eventual delivery.
		e.log.Warn().Err(sendErr).Str("topic", topic).Msg("Broker publish failed")
	}

	e.Submit(RawMessage{Topic: topic, Body: body})
	return sendErr
}

// ResetSimulation emits the RESET_ALL command, forcing threat level LOW and
// restoring the primary devices to their documented defaults.
func (e *Engine) ResetSimulation() {
	//nolint:errcheck // reset is fire-and-forget; local apply always happens
	e.Publish(model.TopicCommands, []byte(`{"action":"RESET_ALL"}`))
}

// SetAddress overwrites a device's network address. Unknown ids are ignored.
func (e *Engine) SetAddress(id, addr string) {
	e.Submit(setAddressEvent{ID: id, Addr: addr})
}

// setAddressEvent is the internal event form of SetAddress.
type setAddressEvent struct {
	ID   string
	Addr string
}

func (setAddressEvent) isEvent() {}

// swapSnapshot rebuilds the immutable snapshot from loop-owned state.
func (e *Engine) swapSnapshot() {
	st := e.st

	devices := make(map[string]model.Device, len(st.devices))
	for id, d := range st.devices {
		devices[id] = d.Clone()
	}
	sessions := make(map[model.Channel]model.SessionState, len(st.sessions))
	for ch, s := range st.sessions {
		sessions[ch] = s
	}

	snap := &Snapshot{
		ThreatLevel: st.forced.Max(st.computed),
		Devices:     devices,
		Traffic:     st.traffic.Samples(),
		AuthEvents:  st.auth.EventsNewestFirst(),
		Reachable:   st.reachable,
		Sessions:    sessions,
	}
	if st.guardianSet {
		g := st.guardian
		g.BlockedClients = append([]string(nil), st.guardian.BlockedClients...)
		snap.Guardian = &g
	}

	e.snap.Store(snap)
	metrics.ThreatLevel.Set(float64(snap.ThreatLevel))
}

func (e *Engine) notify() {
	e.mu.RLock()
	fn := e.onUpdate
	e.mu.RUnlock()
	if fn != nil {
		fn(*e.snap.Load())
	}
}

// recordOutcome logs and counts the result of one applied event.
func (e *Engine) recordOutcome(ev Event, outcome Outcome) {
	switch outcome.Kind {
	case OutcomeApplied:
		metrics.EventsApplied.Inc()
	case OutcomeDropped:
		metrics.EventsDropped.Inc()
		e.log.Debug().Err(outcome.Err).Type("event", ev).Msg("Malformed payload dropped")
	case OutcomeIgnored:
		metrics.EventsIgnored.Inc()
	}
}

// now is a package-level clock hook for deterministic tests.
var now = time.Now
