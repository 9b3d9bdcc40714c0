// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package model

import "strings"

// Canonical inbound topics. Broker subjects use NATS dot form; these are the
// slash-form names the normalizer dispatches on.
const (
	TopicStats    = "aegis/stats"
	TopicAlerts   = "aegis/alerts"
	TopicCommands = "aegis/commands"

	// TopicNodePrefix starts every per-device topic: aegis/node/<id>/set.
	TopicNodePrefix = "aegis/node/"
)

// NodeSetTopic returns the partial-update topic for a device id.
func NodeSetTopic(id string) string {
	return TopicNodePrefix + id + "/set"
}

// ParseNodeSetTopic extracts the device id from aegis/node/<id>/set.
// ok is false for any other topic shape.
func ParseNodeSetTopic(topic string) (id string, ok bool) {
	if !strings.HasPrefix(topic, TopicNodePrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(topic, TopicNodePrefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "set" || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// SubjectToTopic maps a NATS subject (aegis.node.node-a.set) to the canonical
// slash form (aegis/node/node-a/set).
func SubjectToTopic(subject string) string {
	return strings.ReplaceAll(subject, ".", "/")
}

// TopicToSubject maps a canonical topic to its NATS subject form.
func TopicToSubject(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}
