// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package main is the entry point for the AegisDeck server.
//
// AegisDeck aggregates security telemetry from three independent channels
// into one authoritative dashboard state:
//
//  1. Broker: a persistent pub/sub session carrying device updates,
//     traffic statistics, intrusion alerts, and control commands
//  2. Stream: a server-push event stream from the Guardian gateway
//     carrying authentication events and status fragments
//  3. Poll: periodic HTTP fetches of the Guardian status and per-client
//     stats endpoints
//
// A single-goroutine engine owns all mutable state; transports submit
// normalized events into its queue and readers observe immutable snapshots.
// Every component runs under a suture supervisor tree so one failing
// channel never takes down the rest.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file, built-in defaults.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the
// supervisor tree is canceled, the HTTP server drains in-flight requests,
// and the broker session is drained before close.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aegisproject/aegisdeck/internal/api"
	"github.com/aegisproject/aegisdeck/internal/config"
	"github.com/aegisproject/aegisdeck/internal/devicectl"
	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/guardian"
	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/supervisor"
	"github.com/aegisproject/aegisdeck/internal/transport"
	ws "github.com/aegisproject/aegisdeck/internal/websocket"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("version", version).
		Str("broker_url", cfg.Broker.URL).
		Str("gateway_url", cfg.Guardian.GatewayURL).
		Msg("Starting AegisDeck")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optionally boot an in-process broker for demo setups.
	brokerURL := cfg.Broker.URL
	if cfg.Broker.Embedded {
		embedded, err := transport.StartEmbeddedBroker(cfg.Broker.EmbeddedHost, cfg.Broker.EmbeddedPort)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start embedded broker")
		}
		defer embedded.Shutdown()
		brokerURL = embedded.ClientURL()
	}

	// Core state: engine, websocket hub, device controller.
	eng := engine.New()
	hub := ws.NewHub()
	eng.SetOnUpdate(hub.BroadcastSnapshot)
	devices := devicectl.NewController(cfg.Devices)

	// Transports share one Guardian client and one reachability gate.
	gclient := guardian.NewClient(cfg.Guardian.GatewayURL, cfg.Guardian.RequestTimeout)
	gate := transport.NewGate()

	broker := transport.NewBrokerSession(transport.BrokerConfig{
		URL:      brokerURL,
		Subject:  cfg.Broker.Subject,
		ClientID: cfg.Broker.ClientID,
	}, eng)
	eng.SetPublisher(broker)

	// HTTP surface.
	proxy, err := api.NewGuardianProxy(cfg.Guardian.GatewayURL, cfg.Guardian.RequestTimeout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build guardian proxy")
	}
	handlers := api.NewHandlers(eng, devices, hub, version)
	router := api.NewRouter(cfg.Server, handlers, proxy)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// Supervision tree.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCoreService(eng)
	tree.AddCoreService(hub)
	tree.AddTransportService(broker)
	tree.AddTransportService(transport.NewStreamSession(gclient, eng, gate, cfg.Guardian.StreamRetryDelay))
	tree.AddTransportService(transport.NewPoller(transport.PollerConfig{
		StatusInterval: cfg.Guardian.StatusInterval,
		StatsInterval:  cfg.Guardian.StatsInterval,
	}, gclient, eng, gate))
	tree.AddTransportService(transport.NewProbe(gclient, eng, gate, cfg.Guardian.ProbeInterval))
	tree.AddAPIService(api.NewServerService(addr, router.Setup(), cfg.Server.Timeout, 10*time.Second))
	logging.Info().Str("addr", addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
