// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package metrics provides Prometheus instrumentation for the engine loop,
// the three transport channels, and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine metrics
	EventsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_events_applied_total",
			Help: "Total number of normalized events applied to engine state",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_events_dropped_total",
			Help: "Total number of malformed payloads dropped by the normalizer",
		},
	)

	EventsIgnored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_events_ignored_total",
			Help: "Total number of well-formed events matching no device or topic",
		},
	)

	ThreatLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_threat_level",
			Help: "Current threat level (0=LOW 1=MEDIUM 2=HIGH 3=CRITICAL)",
		},
	)

	// Transport metrics
	TransportState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "transport_session_state",
			Help: "Connectivity state per channel (0=DISCONNECTED 1=CONNECTING 2=RECONNECTING 3=CONNECTED)",
		},
		[]string{"channel"},
	)

	TransportMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transport_messages_total",
			Help: "Total inbound messages delivered per channel",
		},
		[]string{"channel"},
	)

	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transport_poll_errors_total",
			Help: "Total swallowed poll-loop fetch failures",
		},
		[]string{"endpoint"},
	)

	GatewayReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transport_gateway_reachable",
			Help: "Whether the Guardian gateway reachability probe succeeds (1/0)",
		},
	)

	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_stream_reconnects_total",
			Help: "Total push-stream reconnect attempts",
		},
	)

	// Command metrics
	CommandsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_published_total",
			Help: "Total outbound broker publishes by topic",
		},
		[]string{"topic"},
	)

	DeviceControlCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_control_calls_total",
			Help: "Total outbound device-control calls by device class and result",
		},
		[]string{"class", "result"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected dashboard WebSocket clients",
		},
	)
)

// SessionStateValue maps a session state string to its gauge value.
func SessionStateValue(state string) float64 {
	switch state {
	case "CONNECTED":
		return 3
	case "RECONNECTING":
		return 2
	case "CONNECTING":
		return 1
	default:
		return 0
	}
}
