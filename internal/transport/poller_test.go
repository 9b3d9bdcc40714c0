// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/guardian"
	"github.com/aegisproject/aegisdeck/internal/model"
)

func startEngine(t *testing.T) (*engine.Engine, chan engine.Snapshot) {
	t.Helper()
	eng := engine.New()
	updates := make(chan engine.Snapshot, 16)
	eng.SetOnUpdate(func(s engine.Snapshot) { updates <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = eng.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return eng, updates
}

// openGate returns a gate forced open, standing in for a successful probe.
func openGate() *Gate {
	g := NewGate()
	g.Set(true)
	return g
}

func waitUpdate(t *testing.T, updates chan engine.Snapshot) engine.Snapshot {
	t.Helper()
	select {
	case snap := <-updates:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine update")
		return engine.Snapshot{}
	}
}

func TestPollStatsFeedsEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats" {
			t.Errorf("path = %q, want /stats", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"clients":[{"ip":"10.0.0.5","packetsPerSec":200,"blocked":true}]}`))
	}))
	defer srv.Close()

	eng, updates := startEngine(t)
	p := NewPoller(PollerConfig{StatusInterval: time.Hour, StatsInterval: time.Hour},
		guardian.NewClient(srv.URL, time.Second), eng, openGate())

	p.pollStats(context.Background())

	snap := waitUpdate(t, updates)
	if snap.ThreatLevel != model.ThreatCritical {
		t.Errorf("threat level = %v, want CRITICAL for a blocked client", snap.ThreatLevel)
	}
	if snap.Guardian == nil || snap.Guardian.RequestsPerSec != 200 {
		t.Errorf("guardian = %+v, want requests_per_sec 200", snap.Guardian)
	}
}

func TestPollStatusFeedsEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_attacks":3,"uptime_sec":120}`))
	}))
	defer srv.Close()

	eng, updates := startEngine(t)
	p := NewPoller(PollerConfig{StatusInterval: time.Hour, StatsInterval: time.Hour},
		guardian.NewClient(srv.URL, time.Second), eng, openGate())

	p.pollStatus(context.Background())

	snap := waitUpdate(t, updates)
	if snap.Guardian == nil || snap.Guardian.TotalAttacks != 3 {
		t.Errorf("guardian = %+v, want total_attacks 3", snap.Guardian)
	}
}

func TestPollSkippedWhileGateClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	eng, _ := startEngine(t)
	gate := NewGate()
	p := NewPoller(PollerConfig{StatusInterval: time.Hour, StatsInterval: time.Hour},
		guardian.NewClient(srv.URL, time.Second), eng, gate)

	p.pollStatus(context.Background())
	p.pollStats(context.Background())

	if hits.Load() != 0 {
		t.Errorf("gateway hit %d times with gate closed, want 0", hits.Load())
	}
}

func TestPollErrorDoesNotDisturbState(t *testing.T) {
	eng, _ := startEngine(t)
	// Nothing listens at this address.
	p := NewPoller(PollerConfig{StatusInterval: time.Hour, StatsInterval: time.Hour},
		guardian.NewClient("http://127.0.0.1:1", 200*time.Millisecond), eng, openGate())

	before := eng.Snapshot()
	p.pollStatus(context.Background())
	p.pollStats(context.Background())
	after := eng.Snapshot()

	if after.ThreatLevel != before.ThreatLevel || after.Guardian != nil {
		t.Error("failed polls must leave engine state untouched")
	}
}

func TestProbeFlipsGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	eng, updates := startEngine(t)
	gate := NewGate()
	probe := NewProbe(guardian.NewClient(srv.URL, time.Second), eng, gate, time.Hour)

	probe.check(context.Background())
	if !gate.Open() {
		t.Error("gate should open after a successful probe")
	}
	snap := waitUpdate(t, updates)
	if !snap.Reachable {
		t.Error("snapshot reachable = false after successful probe")
	}

	srv.Close()
	probe.check(context.Background())
	if gate.Open() {
		t.Error("gate should close after a failed probe")
	}
	snap = waitUpdate(t, updates)
	if snap.Reachable {
		t.Error("snapshot reachable = true after failed probe")
	}
}

func TestGateStartsClosed(t *testing.T) {
	g := NewGate()
	if g.Open() {
		t.Error("gate must start closed until the first probe succeeds")
	}
	g.Set(true)
	if !g.Open() {
		t.Error("Set(true) should open the gate")
	}
	g.Set(false)
	if g.Open() {
		t.Error("Set(false) should close the gate")
	}
}
