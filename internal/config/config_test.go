// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8131 {
		t.Errorf("server port = %d, want 8131", cfg.Server.Port)
	}
	if cfg.Broker.URL != "nats://127.0.0.1:4222" {
		t.Errorf("broker url = %q", cfg.Broker.URL)
	}
	if cfg.Broker.Subject != "aegis.>" {
		t.Errorf("broker subject = %q, want aegis.>", cfg.Broker.Subject)
	}
	if cfg.Guardian.GatewayURL != "http://192.168.4.1" {
		t.Errorf("gateway url = %q", cfg.Guardian.GatewayURL)
	}
	if cfg.Guardian.StatusInterval != 2*time.Second {
		t.Errorf("status interval = %v, want 2s", cfg.Guardian.StatusInterval)
	}
	if cfg.Guardian.StatsInterval != time.Second {
		t.Errorf("stats interval = %v, want 1s", cfg.Guardian.StatsInterval)
	}
	if cfg.Guardian.ProbeInterval != 10*time.Second {
		t.Errorf("probe interval = %v, want 10s", cfg.Guardian.ProbeInterval)
	}
	if cfg.Guardian.StreamRetryDelay != 5*time.Second {
		t.Errorf("stream retry delay = %v, want 5s", cfg.Guardian.StreamRetryDelay)
	}
	if cfg.Devices.ControlTimeout != 2*time.Second {
		t.Errorf("control timeout = %v, want 2s", cfg.Devices.ControlTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("BROKER_URL", "nats://broker.local:4222")
	t.Setenv("GUARDIAN_GATEWAY_URL", "http://10.9.8.7")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Broker.URL != "nats://broker.local:4222" {
		t.Errorf("broker url = %q", cfg.Broker.URL)
	}
	if cfg.Guardian.GatewayURL != "http://10.9.8.7" {
		t.Errorf("gateway url = %q", cfg.Guardian.GatewayURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.local" {
		t.Errorf("cors origins = %v, want two trimmed entries", cfg.Server.CORSOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 8200\nguardian:\n  stats_interval: 3s\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8200 {
		t.Errorf("server port = %d, want 8200 from file", cfg.Server.Port)
	}
	if cfg.Guardian.StatsInterval != 3*time.Second {
		t.Errorf("stats interval = %v, want 3s from file", cfg.Guardian.StatsInterval)
	}
	// Untouched values keep their defaults.
	if cfg.Broker.Subject != "aegis.>" {
		t.Errorf("broker subject = %q, want default", cfg.Broker.Subject)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8200\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8300 {
		t.Errorf("server port = %d, env must win over file", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail validation")
	}

	cfg = defaultConfig()
	cfg.Guardian.GatewayURL = "not-a-url"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed gateway URL should fail validation")
	}

	cfg = defaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level should fail validation")
	}
}
