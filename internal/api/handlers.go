// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/aegisproject/aegisdeck/internal/devicectl"
	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/model"
	"github.com/aegisproject/aegisdeck/internal/websocket"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	engine  *engine.Engine
	devices *devicectl.Controller
	hub     *websocket.Hub
	version string
}

// NewHandlers wires the handler set.
func NewHandlers(eng *engine.Engine, devices *devicectl.Controller, hub *websocket.Hub, version string) *Handlers {
	return &Handlers{engine: eng, devices: devices, hub: hub, version: version}
}

// GetState returns the full dashboard snapshot.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Snapshot())
}

// GetDevices returns the device list.
func (h *Handlers) GetDevices(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Snapshot().Devices)
}

// GetTraffic returns the rolling traffic window, oldest first.
func (h *Handlers) GetTraffic(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Snapshot().Traffic)
}

// GetEvents returns the rolling auth-event window, newest first.
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.engine.Snapshot().AuthEvents)
}

// GetGuardian returns the last merged Guardian status, or 404 if no status
// has arrived yet.
func (h *Handlers) GetGuardian(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	if snap.Guardian == nil {
		NewResponseWriter(w, r).NotFound("no guardian status received yet")
		return
	}
	NewResponseWriter(w, r).Success(snap.Guardian)
}

// setAddressRequest is the body for PostAddress.
type setAddressRequest struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
}

// PostAddress updates a device's network address in the engine state.
func (h *Handlers) PostAddress(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req setAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if req.NodeID == "" || req.Address == "" {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			"node_id and address are required", nil)
		return
	}

	h.engine.SetAddress(req.NodeID, req.Address)
	rw.Accepted(map[string]string{"node_id": req.NodeID, "address": req.Address})
}

// controlRequest is the body for PostControl. Exactly one action field is
// expected per call, selected by the device class.
type controlRequest struct {
	Device  model.DeviceClass `json:"device"`
	Message string            `json:"message,omitempty"`
	Target  *float64          `json:"target,omitempty"`
	On      *bool             `json:"on,omitempty"`
}

// PostControl sends a direct HTTP command to one of the local devices.
func (h *Handlers) PostControl(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}

	var (
		result devicectl.Result
		err    error
	)
	switch req.Device {
	case model.ClassDisplay:
		result, err = h.devices.SetMessage(r.Context(), req.Message)
	case model.ClassThermostat:
		if req.Target == nil {
			rw.BadRequest("target is required for thermostat control")
			return
		}
		result, err = h.devices.SetTemperature(r.Context(), *req.Target)
	case model.ClassLight:
		if req.On == nil {
			rw.BadRequest("on is required for light control")
			return
		}
		result, err = h.devices.SetLight(r.Context(), *req.On)
	default:
		rw.BadRequest(fmt.Sprintf("unknown device class %q", req.Device))
		return
	}

	if err != nil {
		rw.ErrorWithDetails(http.StatusBadGateway, ErrCodeDeviceError, err.Error(), nil)
		return
	}
	rw.Success(result)
}

// publishRequest is the body for PostPublish.
type publishRequest struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// PostPublish publishes an arbitrary payload on a canonical topic. The
// engine applies the message optimistically so the caller sees its own
// write in the next snapshot.
func (h *Handlers) PostPublish(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if req.Topic == "" {
		rw.BadRequest("topic is required")
		return
	}

	if err := h.engine.Publish(req.Topic, req.Payload); err != nil {
		rw.BrokerError(err)
		return
	}
	rw.Accepted(map[string]string{"topic": req.Topic})
}

// PostReset broadcasts the simulation reset command.
func (h *Handlers) PostReset(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetSimulation()
	NewResponseWriter(w, r).Accepted(map[string]string{"action": "RESET_ALL"})
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from arbitrary LAN origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers the client with the hub.
// The current snapshot is queued immediately so a fresh client does not wait
// for the next state change.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
	h.hub.BroadcastSnapshot(h.engine.Snapshot())
}
