// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package config loads layered configuration for AegisDeck: struct defaults,
// an optional YAML file, then environment variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Broker   BrokerConfig   `koanf:"broker"`
	Guardian GuardianConfig `koanf:"guardian"`
	Devices  DevicesConfig  `koanf:"devices"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// CORSOrigins are the dashboard origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// BrokerConfig configures the pub/sub broker session.
type BrokerConfig struct {
	URL string `koanf:"url" validate:"required"`
	// Subject is the wildcard subscription covering all device and stats
	// subjects (NATS form; dots map to the canonical slash topics).
	Subject  string `koanf:"subject" validate:"required"`
	ClientID string `koanf:"client_id"`
	// Embedded runs an in-process NATS server for development and demos.
	Embedded     bool   `koanf:"embedded"`
	EmbeddedPort int    `koanf:"embedded_port" validate:"gte=0,lte=65535"`
	EmbeddedHost string `koanf:"embedded_host"`
}

// GuardianConfig configures the Guardian gateway transports: the push-stream
// session, the two poll loops, and the reachability probe that gates them.
type GuardianConfig struct {
	GatewayURL     string        `koanf:"gateway_url" validate:"required,url"`
	StatusInterval time.Duration `koanf:"status_interval" validate:"gt=0"`
	StatsInterval  time.Duration `koanf:"stats_interval" validate:"gt=0"`
	ProbeInterval  time.Duration `koanf:"probe_interval" validate:"gt=0"`
	// StreamRetryDelay is the fixed delay between push-stream reconnect
	// attempts. There is deliberately no backoff growth: the gateway is
	// LAN-local and assumed to recover quickly.
	StreamRetryDelay time.Duration `koanf:"stream_retry_delay" validate:"gt=0"`
	RequestTimeout   time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// DevicesConfig holds the fixed local-network device-control addresses.
type DevicesConfig struct {
	DisplayURL     string        `koanf:"display_url" validate:"required,url"`
	ThermostatURL  string        `koanf:"thermostat_url" validate:"required,url"`
	LightURL       string        `koanf:"light_url" validate:"required,url"`
	ControlTimeout time.Duration `koanf:"control_timeout" validate:"gt=0"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns the built-in defaults, overridden by file and env.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8131,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Broker: BrokerConfig{
			URL:          "nats://127.0.0.1:4222",
			Subject:      "aegis.>",
			ClientID:     "aegisdeck",
			Embedded:     false,
			EmbeddedPort: 4222,
			EmbeddedHost: "127.0.0.1",
		},
		Guardian: GuardianConfig{
			GatewayURL:       "http://192.168.4.1",
			StatusInterval:   2 * time.Second,
			StatsInterval:    1 * time.Second,
			ProbeInterval:    10 * time.Second,
			StreamRetryDelay: 5 * time.Second,
			RequestTimeout:   2 * time.Second,
		},
		Devices: DevicesConfig{
			DisplayURL:     "http://192.168.4.151",
			ThermostatURL:  "http://192.168.4.160",
			LightURL:       "http://192.168.4.200",
			ControlTimeout: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration via struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
