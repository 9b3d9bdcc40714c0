// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package store provides fixed-capacity, insertion-ordered ring buffers for
// the rolling telemetry windows: traffic samples and security-audit events.
//
// Both stores are append-then-trim with O(1) amortized push. Insertion order
// is preserved; consumers that want newest-first reverse at render time.
package store

import (
	"sync"

	"github.com/aegisproject/aegisdeck/internal/model"
)

// DefaultTrafficCapacity bounds the rolling traffic-sample window.
const DefaultTrafficCapacity = 50

// DefaultAuthCapacity bounds the rolling auth-event window.
const DefaultAuthCapacity = 100

// Ring is a capacity-bounded slice of T. Oldest entries are evicted first.
//
// Implementation note: the buffer is circular (head index + length) so a push
// at capacity overwrites in place instead of reslicing, keeping push O(1)
// without amortized copying.
type Ring[T any] struct {
	mu   sync.RWMutex
	buf  []T
	head int
	size int
}

// NewRing creates a ring with the given capacity. Capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry when full.
func (r *Ring[T]) Push(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

// Items returns the entries oldest-first as a fresh slice.
func (r *Ring[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of stored entries.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Clear removes all entries.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.size = 0
}

// TrafficStore is the rolling traffic-sample window.
type TrafficStore struct {
	ring *Ring[model.TrafficSample]
}

// NewTrafficStore creates a traffic store with the default capacity.
func NewTrafficStore() *TrafficStore {
	return &TrafficStore{ring: NewRing[model.TrafficSample](DefaultTrafficCapacity)}
}

// Push appends a sample, trimming to the last 50.
func (s *TrafficStore) Push(sample model.TrafficSample) { s.ring.Push(sample) }

// Samples returns the window oldest-first.
func (s *TrafficStore) Samples() []model.TrafficSample { return s.ring.Items() }

// Len returns the current window size.
func (s *TrafficStore) Len() int { return s.ring.Len() }

// Clear empties the window.
func (s *TrafficStore) Clear() { s.ring.Clear() }

// AuthStore is the rolling security-audit log.
type AuthStore struct {
	ring *Ring[model.AuthEvent]
}

// NewAuthStore creates an auth-event store with the default capacity.
func NewAuthStore() *AuthStore {
	return &AuthStore{ring: NewRing[model.AuthEvent](DefaultAuthCapacity)}
}

// Push appends an event, trimming to the last 100.
func (s *AuthStore) Push(ev model.AuthEvent) { s.ring.Push(ev) }

// Events returns the log oldest-first.
func (s *AuthStore) Events() []model.AuthEvent { return s.ring.Items() }

// EventsNewestFirst returns the log reversed for display.
func (s *AuthStore) EventsNewestFirst() []model.AuthEvent {
	items := s.ring.Items()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Len returns the current log size.
func (s *AuthStore) Len() int { return s.ring.Len() }

// Clear empties the log.
func (s *AuthStore) Clear() { s.ring.Clear() }
