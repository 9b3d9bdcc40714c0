// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package engine

import (
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/aegisproject/aegisdeck/internal/model"
)

// Threat classification thresholds. The effective level is always
// max(forced floor, computed): the floor is raised by discrete events and
// cleared only by an explicit reset or an empty blocklist, so routine volume
// recomputation can never silently lower a CRITICAL.
const (
	highPacketThreshold   = 100
	mediumPacketThreshold = 50

	probCriticalThreshold = 0.8
	probHighThreshold     = 0.5

	failedAttemptThreshold        = 3
	totalAttacksCriticalThreshold = 10
)

// applyStats processes one per-client stats poll: it updates the traffic
// window, derives auth events by diffing the blocked set against the previous
// snapshot, merges the Guardian aggregate, and recomputes the threat level.
func (e *Engine) applyStats(clients []ClientStat) Outcome {
	st := e.st

	var totalPackets float64
	blocked := make(map[string]struct{})
	blockedList := make([]string, 0)
	for _, c := range clients {
		totalPackets += c.PacketsPerSec
		if c.Blocked {
			blocked[c.IP] = struct{}{}
			blockedList = append(blockedList, c.IP)
		}
	}

	st.traffic.Push(model.TrafficSample{
		Time:    now().Format("15:04:05"),
		Packets: int(totalPackets),
		Type:    "normal",
	})

	// Blocked-set diff. An address blocked in two consecutive polls
	// generates no duplicate event.
	for ip := range blocked {
		if _, seen := st.prevBlocked[ip]; !seen {
			st.auth.Push(model.AuthEvent{
				ID:        uuid.New().String(),
				Timestamp: now(),
				IP:        ip,
				Status:    model.AuthBruteForce,
			})
			st.forced = model.ThreatCritical
		}
	}
	for ip := range st.prevBlocked {
		if _, still := blocked[ip]; !still {
			st.auth.Push(model.AuthEvent{
				ID:        uuid.New().String(),
				Timestamp: now(),
				IP:        ip,
				Status:    model.AuthUnblocked,
			})
		}
	}
	st.prevBlocked = blocked

	st.guardian.RequestsPerSec = totalPackets
	st.guardian.BlockedClients = blockedList
	e.st.guardianSet = true

	st.computed = computeFromVolume(len(blocked), totalPackets)
	if len(blocked) == 0 {
		// Corrective condition: an empty blocklist clears the sticky
		// floor; the computed volume level takes over.
		st.forced = model.ThreatLow
	}

	return applied()
}

// computeFromVolume derives the recomputed threat level from the blocklist
// and the aggregate packet rate.
func computeFromVolume(blockedCount int, packets float64) model.ThreatLevel {
	switch {
	case blockedCount > 0:
		return model.ThreatCritical
	case packets > highPacketThreshold:
		return model.ThreatHigh
	case packets > mediumPacketThreshold:
		return model.ThreatMedium
	default:
		return model.ThreatLow
	}
}

// DecodeStats decodes a Guardian /stats response body into client rows.
// Shared by the poll loop and tests.
func DecodeStats(body []byte) ([]ClientStat, error) {
	var resp struct {
		Clients []ClientStat `json:"clients"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Clients, nil
}
