// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package model defines the canonical data model shared by the engine,
// transports, and API layer: monitored devices, threat levels, rolling
// telemetry records, and Guardian gateway status.
package model

import (
	"strings"
	"time"
)

// ThreatLevel is the process-wide threat classification.
// Levels are ordered: LOW < MEDIUM < HIGH < CRITICAL.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

// String returns the wire representation used by the dashboard.
func (t ThreatLevel) String() string {
	switch t {
	case ThreatCritical:
		return "CRITICAL"
	case ThreatHigh:
		return "HIGH"
	case ThreatMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// MarshalJSON encodes the level as its string form.
func (t ThreatLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes the string form; unknown values map to LOW.
func (t *ThreatLevel) UnmarshalJSON(data []byte) error {
	*t = ParseThreatLevel(string(data))
	return nil
}

// ParseThreatLevel maps a string (quoted or bare) to a ThreatLevel.
func ParseThreatLevel(s string) ThreatLevel {
	switch strings.Trim(s, `"`) {
	case "CRITICAL":
		return ThreatCritical
	case "HIGH":
		return ThreatHigh
	case "MEDIUM":
		return ThreatMedium
	default:
		return ThreatLow
	}
}

// Max returns the higher of two levels.
func (t ThreatLevel) Max(other ThreatLevel) ThreatLevel {
	if other > t {
		return other
	}
	return t
}

// DeviceClass identifies the kind of monitored device. The set is closed
// but designed for extension.
type DeviceClass string

const (
	ClassThermostat DeviceClass = "THERMOSTAT"
	ClassDisplay    DeviceClass = "DISPLAY"
	ClassLight      DeviceClass = "LIGHT"
)

// DeviceStatus is the connectivity state of a monitored device.
type DeviceStatus string

const (
	DeviceOnline      DeviceStatus = "ONLINE"
	DeviceOffline     DeviceStatus = "OFFLINE"
	DeviceCompromised DeviceStatus = "COMPROMISED"
)

// Device is one monitored device. Attrs is a class-specific attribute map
// (temp/target for thermostats, msg for displays, state for lights) that is
// merged, never replaced, on partial update.
type Device struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Class    DeviceClass    `json:"type"`
	Status   DeviceStatus   `json:"status"`
	Addr     string         `json:"ip"`
	LastSeen time.Time      `json:"last_seen"`
	Attrs    map[string]any `json:"data"`
}

// Clone returns a deep copy safe to hand to consumers.
func (d Device) Clone() Device {
	out := d
	out.Attrs = make(map[string]any, len(d.Attrs))
	for k, v := range d.Attrs {
		out.Attrs[k] = v
	}
	return out
}

// TrafficSample is one point on the rolling traffic graph.
type TrafficSample struct {
	Time    string `json:"time"`
	Packets int    `json:"packets"`
	Type    string `json:"type"`
}

// AuthOutcome classifies a Guardian authentication event.
type AuthOutcome string

const (
	AuthSuccess    AuthOutcome = "success"
	AuthFailed     AuthOutcome = "failed"
	AuthBruteForce AuthOutcome = "brute_force"
	AuthBlocked    AuthOutcome = "blocked"
	AuthUnblocked  AuthOutcome = "unblocked"
)

// AuthEvent is one entry in the rolling security-audit log.
type AuthEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	IP        string      `json:"ip"`
	Status    AuthOutcome `json:"status"`
	Attempt   int         `json:"attempt,omitempty"`
}

// GuardianStatus is the aggregate Guardian IPS snapshot. It is a
// partial-update merge target: keys absent from an update leave the
// previous values in place.
type GuardianStatus struct {
	RequestsPerSec float64  `json:"requests_per_sec"`
	TotalAttacks   int      `json:"total_attacks"`
	LastEvent      string   `json:"last_event"`
	UptimeSec      int64    `json:"uptime_sec"`
	BlockedClients []string `json:"blocked_clients"`
}

// SessionState is the connectivity state of one transport channel.
type SessionState string

const (
	SessionConnecting   SessionState = "CONNECTING"
	SessionConnected    SessionState = "CONNECTED"
	SessionReconnecting SessionState = "RECONNECTING"
	SessionDisconnected SessionState = "DISCONNECTED"
)

// Channel identifies one of the three supervised transport channels.
type Channel string

const (
	ChannelBroker Channel = "broker"
	ChannelStream Channel = "stream"
	ChannelPoll   Channel = "poll"
)
