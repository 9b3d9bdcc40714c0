// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/aegisproject/aegisdeck/internal/config"
	"github.com/aegisproject/aegisdeck/internal/devicectl"
	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/websocket"
)

func testRouter(t *testing.T, deviceSrv *httptest.Server) http.Handler {
	t.Helper()

	deviceURL := "http://127.0.0.1:1"
	if deviceSrv != nil {
		deviceURL = deviceSrv.URL
	}
	devices := devicectl.NewController(config.DevicesConfig{
		DisplayURL:     deviceURL,
		ThermostatURL:  deviceURL,
		LightURL:       deviceURL,
		ControlTimeout: 500 * time.Millisecond,
	})

	handlers := NewHandlers(engine.New(), devices, websocket.NewHub(), "test")
	router := NewRouter(config.ServerConfig{
		CORSOrigins: []string{"*"},
	}, handlers, nil)
	return router.Setup()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestGetState(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatal("response success = false")
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	if data["threat_level"] != "LOW" {
		t.Errorf("threat_level = %v, want LOW", data["threat_level"])
	}
	nodes, ok := data["nodes"].(map[string]interface{})
	if !ok || len(nodes) != 3 {
		t.Errorf("nodes = %v, want 3 seeded devices", data["nodes"])
	}
}

func TestGetDevices(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	devices, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want device map", resp.Data)
	}
	if _, ok := devices["node-a"]; !ok {
		t.Error("node-a missing from devices response")
	}
}

func TestGetGuardianBeforeFirstStatus(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/guardian", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before first guardian status", rec.Code)
	}
}

func TestPostAddressValidation(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/address", strings.NewReader(`{"node_id":""}`))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing fields", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/address", strings.NewReader(`{"node_id":"node-a","address":"192.168.0.50"}`))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestPostControlLight(t *testing.T) {
	var gotPath string
	deviceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer deviceSrv.Close()

	h := testRouter(t, deviceSrv)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/control", strings.NewReader(`{"device":"LIGHT","on":true}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if gotPath != "/light/on" {
		t.Errorf("device path = %q, want /light/on", gotPath)
	}
}

func TestPostControlValidation(t *testing.T) {
	h := testRouter(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"unknown device", `{"device":"TOASTER"}`},
		{"thermostat without target", `{"device":"THERMOSTAT"}`},
		{"light without on", `{"device":"LIGHT"}`},
		{"not json", `{{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/control", strings.NewReader(tc.body))
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPostPublish(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/publish",
		strings.NewReader(`{"topic":"aegis/node/node-d/set","payload":{"state":true}}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/publish", strings.NewReader(`{"payload":{}}`))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing topic", rec.Code)
	}
}

func TestPostReset(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reset", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := testRouter(t, nil)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["status"] != "ok" {
		t.Errorf("health status field = %v, want ok", data["status"])
	}
	if data["version"] != "test" {
		t.Errorf("version = %v, want test", data["version"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "engine_threat_level") {
		t.Error("metrics output missing engine_threat_level series")
	}
}
