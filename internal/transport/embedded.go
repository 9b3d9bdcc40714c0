// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package transport

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/aegisproject/aegisdeck/internal/logging"
)

// EmbeddedBroker runs an in-process NATS server for deployments without an
// external broker. Plain core NATS, no persistence.
type EmbeddedBroker struct {
	srv *server.Server
}

// StartEmbeddedBroker boots an embedded server on the given port and waits
// until it accepts connections.
func StartEmbeddedBroker(host string, port int) (*EmbeddedBroker, error) {
	opts := &server.Options{
		Host:   host,
		Port:   port,
		NoSigs: true,
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("embedded broker: create server: %w", err)
	}

	srv.ConfigureLogger()
	go srv.Start()

	if !srv.ReadyForConnections(30 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded broker: not ready within 30s")
	}

	logging.Info().Str("url", srv.ClientURL()).Msg("Embedded broker started")
	return &EmbeddedBroker{srv: srv}, nil
}

// ClientURL returns the URL local clients should connect to.
func (e *EmbeddedBroker) ClientURL() string { return e.srv.ClientURL() }

// Shutdown stops the server and waits for it to exit.
func (e *EmbeddedBroker) Shutdown() {
	e.srv.Shutdown()
	e.srv.WaitForShutdown()
}
