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

	"github.com/aegisproject/aegisdeck/internal/guardian"
	"github.com/aegisproject/aegisdeck/internal/model"
)

func TestStreamSessionDeliversEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"type\":\"auth\",\"payload\":{\"ip\":\"10.2.2.2\",\"status\":\"success\"}}\n"))
	}))
	defer srv.Close()

	eng, updates := startEngine(t)
	session := NewStreamSession(guardian.NewClient(srv.URL, time.Second), eng, openGate(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = session.Serve(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-updates:
			if len(snap.AuthEvents) == 1 && snap.AuthEvents[0].IP == "10.2.2.2" {
				if snap.AuthEvents[0].Status != model.AuthSuccess {
					t.Errorf("status = %v, want success", snap.AuthEvents[0].Status)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream auth event")
		}
	}
}

func TestStreamSessionSkipsWhileGateClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	eng, _ := startEngine(t)
	gate := NewGate()
	session := NewStreamSession(guardian.NewClient(srv.URL, time.Second), eng, gate, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = session.Serve(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	if hits.Load() != 0 {
		t.Errorf("stream attempted %d connections with gate closed, want 0", hits.Load())
	}
}

func TestStreamSessionReconnects(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		// Close immediately; the session must come back after the fixed
		// delay, not give up.
	}))
	defer srv.Close()

	eng, _ := startEngine(t)
	session := NewStreamSession(guardian.NewClient(srv.URL, time.Second), eng, openGate(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = session.Serve(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if hits.Load() < 3 {
		t.Errorf("stream connection attempts = %d, want at least 3", hits.Load())
	}
}

func TestStreamSessionQuietStreamReportsConnected(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		// Accepted but silent; no payload ever arrives.
		<-release
	}))
	defer srv.Close()
	defer close(release)

	eng, updates := startEngine(t)
	session := NewStreamSession(guardian.NewClient(srv.URL, time.Second), eng, openGate(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = session.Serve(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap := <-updates:
			if snap.Sessions[model.ChannelStream] == model.SessionConnected {
				return
			}
		case <-deadline:
			t.Fatal("quiet stream never reported CONNECTED")
		}
	}
}
