// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package engine

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/aegisproject/aegisdeck/internal/model"
)

// apply normalizes and executes one event against loop-owned state.
// Malformed payloads are dropped with a diagnostic outcome only; nothing in
// here can abort the loop.
func (e *Engine) apply(ev Event) Outcome {
	switch ev := ev.(type) {
	case RawMessage:
		return e.applyRaw(ev)
	case StatusSnapshot:
		return e.applyStatusBody(ev.Body)
	case StatsSnapshot:
		return e.applyStats(ev.Clients)
	case StreamMessage:
		return e.applyStream(ev.Body)
	case SessionEvent:
		e.st.sessions[ev.Channel] = ev.State
		return applied()
	case ReachabilityEvent:
		e.st.reachable = ev.Reachable
		return applied()
	case setAddressEvent:
		return e.applySetAddress(ev)
	default:
		return ignored()
	}
}

// statsPayload is the aegis/stats body.
type statsPayload struct {
	PacketRate float64 `json:"packet_rate"`
	ProbAttack float64 `json:"prob_attack"`
}

// commandPayload is the aegis/commands body.
type commandPayload struct {
	Action string `json:"action"`
}

// applyRaw dispatches a broker or locally published message by topic naming
// convention.
func (e *Engine) applyRaw(msg RawMessage) Outcome {
	switch msg.Topic {
	case model.TopicStats:
		var stats statsPayload
		if err := json.Unmarshal(msg.Body, &stats); err != nil {
			return dropped(fmt.Errorf("decode %s: %w", model.TopicStats, err))
		}
		e.st.traffic.Push(model.TrafficSample{
			Time:    now().Format("15:04:05"),
			Packets: int(stats.PacketRate),
			Type:    "normal",
		})
		switch {
		case stats.ProbAttack > probCriticalThreshold:
			e.st.forced = model.ThreatCritical
		case stats.ProbAttack > probHighThreshold:
			e.st.computed = model.ThreatHigh
		default:
			e.st.computed = model.ThreatLow
		}
		return applied()

	case model.TopicAlerts:
		// Any body on the alert topic forces CRITICAL; no decoding.
		e.st.forced = model.ThreatCritical
		return applied()

	case model.TopicCommands:
		var cmd commandPayload
		if err := json.Unmarshal(msg.Body, &cmd); err != nil {
			return dropped(fmt.Errorf("decode %s: %w", model.TopicCommands, err))
		}
		if cmd.Action != "RESET_ALL" {
			return ignored()
		}
		e.reset()
		return applied()
	}

	if id, ok := model.ParseNodeSetTopic(msg.Topic); ok {
		var attrs map[string]any
		if err := json.Unmarshal(msg.Body, &attrs); err != nil {
			return dropped(fmt.Errorf("decode node set for %s: %w", id, err))
		}
		return e.mergeDeviceAttrs(id, attrs)
	}

	return ignored()
}

// mergeDeviceAttrs merges a partial attribute map into a known device.
// Unknown keys are added, known keys overwritten, absent keys retained.
// Unknown device ids are a no-op, never auto-created.
func (e *Engine) mergeDeviceAttrs(id string, attrs map[string]any) Outcome {
	dev, ok := e.st.devices[id]
	if !ok {
		return ignored()
	}
	for k, v := range attrs {
		dev.Attrs[k] = v
	}
	dev.LastSeen = now()
	e.st.devices[id] = dev
	return applied()
}

// applySetAddress overwrites the address field only.
func (e *Engine) applySetAddress(ev setAddressEvent) Outcome {
	dev, ok := e.st.devices[ev.ID]
	if !ok {
		return ignored()
	}
	dev.Addr = ev.Addr
	e.st.devices[ev.ID] = dev
	return applied()
}

// guardianStatusPatch distinguishes absent keys from zero values so the
// GuardianStatus aggregate is merged, never replaced.
type guardianStatusPatch struct {
	RequestsPerSec *float64 `json:"requests_per_sec"`
	TotalAttacks   *int     `json:"total_attacks"`
	LastEvent      *string  `json:"last_event"`
	UptimeSec      *int64   `json:"uptime_sec"`
	BlockedClients []string `json:"blocked_clients"`
}

func (p *guardianStatusPatch) empty() bool {
	return p.RequestsPerSec == nil && p.TotalAttacks == nil &&
		p.LastEvent == nil && p.UptimeSec == nil && p.BlockedClients == nil
}

// applyStatusBody merges a Guardian aggregate snapshot. Status poll responses
// and push-stream status fragments normalize identically through here.
func (e *Engine) applyStatusBody(body []byte) Outcome {
	var patch guardianStatusPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		return dropped(fmt.Errorf("decode guardian status: %w", err))
	}
	if patch.empty() {
		return ignored()
	}

	g := &e.st.guardian
	if patch.RequestsPerSec != nil {
		g.RequestsPerSec = *patch.RequestsPerSec
	}
	if patch.TotalAttacks != nil {
		g.TotalAttacks = *patch.TotalAttacks
	}
	if patch.LastEvent != nil {
		g.LastEvent = *patch.LastEvent
	}
	if patch.UptimeSec != nil {
		g.UptimeSec = *patch.UptimeSec
	}
	if patch.BlockedClients != nil {
		g.BlockedClients = patch.BlockedClients
	}
	e.st.guardianSet = true

	// Attack counters suggest elevated levels; only the >10 case is a
	// discrete enough signal to raise the sticky floor.
	if patch.TotalAttacks != nil {
		switch {
		case *patch.TotalAttacks > totalAttacksCriticalThreshold:
			e.st.forced = model.ThreatCritical
		case *patch.TotalAttacks > 0 || len(patch.BlockedClients) > 0:
			e.st.computed = e.st.computed.Max(model.ThreatHigh)
		}
	} else if len(patch.BlockedClients) > 0 {
		e.st.computed = e.st.computed.Max(model.ThreatHigh)
	}

	return applied()
}

// streamEnvelope is one push-stream message: a typed auth event, or any other
// JSON object treated as a status fragment.
type streamEnvelope struct {
	Type    string       `json:"type"`
	Payload *authPayload `json:"payload"`
}

type authPayload struct {
	IP      string `json:"ip"`
	Status  string `json:"status"`
	Attempt int    `json:"attempt"`
}

// applyStream normalizes one push-stream message. Heartbeats and other
// non-JSON bodies are dropped silently.
func (e *Engine) applyStream(body []byte) Outcome {
	var env streamEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return dropped(fmt.Errorf("decode stream message: %w", err))
	}

	if env.Type == "auth" && env.Payload != nil {
		outcome := model.AuthOutcome(env.Payload.Status)
		e.st.auth.Push(model.AuthEvent{
			ID:        uuid.New().String(),
			Timestamp: now(),
			IP:        env.Payload.IP,
			Status:    outcome,
			Attempt:   env.Payload.Attempt,
		})

		switch {
		case outcome == model.AuthBruteForce:
			e.st.forced = model.ThreatCritical
		case outcome == model.AuthFailed && env.Payload.Attempt > failedAttemptThreshold:
			e.st.computed = e.st.computed.Max(model.ThreatMedium)
		}
		return applied()
	}

	return e.applyStatusBody(body)
}

// reset restores the documented defaults: threat level LOW unconditionally,
// primary devices back to their default attribute sets and ONLINE status.
// Other devices are untouched.
func (e *Engine) reset() {
	e.st.forced = model.ThreatLow
	e.st.computed = model.ThreatLow

	defaults := defaultDevices()
	for _, id := range []string{"node-a", "node-b"} {
		dev, ok := e.st.devices[id]
		if !ok {
			continue
		}
		dev.Status = model.DeviceOnline
		dev.Attrs = defaults[id].Attrs
		e.st.devices[id] = dev
	}
}
