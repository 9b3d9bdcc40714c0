// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package store

import (
	"fmt"
	"testing"

	"github.com/aegisproject/aegisdeck/internal/model"
)

func TestRingPushBelowCapacity(t *testing.T) {
	r := NewRing[int](5)
	r.Push(1)
	r.Push(2)
	r.Push(3)

	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	items := r.Items()
	for i, want := range []int{1, 2, 3} {
		if items[i] != want {
			t.Errorf("items[%d] = %d, want %d", i, items[i], want)
		}
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	items := r.Items()
	for i, want := range []int{3, 4, 5} {
		if items[i] != want {
			t.Errorf("items[%d] = %d, want %d", i, items[i], want)
		}
	}
}

func TestRingClear(t *testing.T) {
	r := NewRing[string](2)
	r.Push("a")
	r.Push("b")
	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", r.Len())
	}
	r.Push("c")
	if items := r.Items(); len(items) != 1 || items[0] != "c" {
		t.Errorf("items after reuse = %v, want [c]", items)
	}
}

func TestRingItemsIsACopy(t *testing.T) {
	r := NewRing[int](3)
	r.Push(7)
	items := r.Items()
	items[0] = 99

	if r.Items()[0] != 7 {
		t.Error("mutating the returned slice must not affect the ring")
	}
}

func TestTrafficStoreCapacity(t *testing.T) {
	s := NewTrafficStore()
	for i := 0; i < DefaultTrafficCapacity+10; i++ {
		s.Push(model.TrafficSample{Packets: i})
	}

	samples := s.Samples()
	if len(samples) != DefaultTrafficCapacity {
		t.Fatalf("samples = %d, want %d", len(samples), DefaultTrafficCapacity)
	}
	if samples[0].Packets != 10 {
		t.Errorf("oldest sample packets = %d, want 10 (first 10 evicted)", samples[0].Packets)
	}
	if samples[len(samples)-1].Packets != DefaultTrafficCapacity+9 {
		t.Errorf("newest sample packets = %d, want %d", samples[len(samples)-1].Packets, DefaultTrafficCapacity+9)
	}
}

func TestAuthStoreNewestFirst(t *testing.T) {
	s := NewAuthStore()
	for i := 0; i < 3; i++ {
		s.Push(model.AuthEvent{ID: fmt.Sprintf("ev-%d", i)})
	}

	newest := s.EventsNewestFirst()
	if newest[0].ID != "ev-2" || newest[2].ID != "ev-0" {
		t.Errorf("EventsNewestFirst = %v, want ev-2 first", newest)
	}

	oldest := s.Events()
	if oldest[0].ID != "ev-0" {
		t.Errorf("Events = %v, want ev-0 first", oldest)
	}
}

func TestAuthStoreCapacity(t *testing.T) {
	s := NewAuthStore()
	for i := 0; i < DefaultAuthCapacity+5; i++ {
		s.Push(model.AuthEvent{ID: fmt.Sprintf("ev-%d", i)})
	}
	if s.Len() != DefaultAuthCapacity {
		t.Errorf("Len = %d, want %d", s.Len(), DefaultAuthCapacity)
	}
	if got := s.Events()[0].ID; got != "ev-5" {
		t.Errorf("oldest = %s, want ev-5", got)
	}
}
