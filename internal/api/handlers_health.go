// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"net/http"
	"time"

	"github.com/aegisproject/aegisdeck/internal/model"
)

var startTime = time.Now()

// healthStatus is the body of the aggregate health endpoint.
type healthStatus struct {
	Status    string                         `json:"status"`
	Version   string                         `json:"version"`
	UptimeSec int64                          `json:"uptime_sec"`
	Gateway   bool                           `json:"gateway_reachable"`
	Sessions  map[model.Channel]model.SessionState `json:"sessions"`
}

// Health reports overall service health. Degraded means the process is fine
// but every transport channel is down, so the snapshot is going stale.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	status := "ok"
	if allDisconnected(snap.Sessions) {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(healthStatus{
		Status:    status,
		Version:   h.version,
		UptimeSec: int64(time.Since(startTime).Seconds()),
		Gateway:   snap.Reachable,
		Sessions:  snap.Sessions,
	})
}

// HealthLive is the liveness probe: if this handler runs, the process is up.
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HealthReady is the readiness probe. The engine always has a snapshot
// (seeded at startup), so readiness only means the event loop is serving.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func allDisconnected(sessions map[model.Channel]model.SessionState) bool {
	if len(sessions) == 0 {
		return false
	}
	for _, st := range sessions {
		if st != model.SessionDisconnected {
			return false
		}
	}
	return true
}
