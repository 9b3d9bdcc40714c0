// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package transport supervises the three independent telemetry channels:
// the broker pub/sub session, the Guardian push-stream session, and the
// Guardian poll loops, plus the reachability probe that gates the LAN-only
// channels. Every channel funnels normalized input into the engine's single
// inbound queue; none is aware of another's internal state.
package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/metrics"
	"github.com/aegisproject/aegisdeck/internal/model"
)

// BrokerConfig configures the broker session.
type BrokerConfig struct {
	URL      string
	Subject  string
	ClientID string
}

// BrokerSession is the persistent pub/sub connection. Reconnection is
// delegated to the NATS client's built-in retry; this session only mirrors
// connection-state transitions into the engine. It runs unconditionally
// since the broker is a public relay, not the local gateway.
type BrokerSession struct {
	cfg BrokerConfig
	eng *engine.Engine
	log zerolog.Logger

	// conn is written by the Serve goroutine and read by Publish from
	// API handler goroutines.
	conn atomic.Pointer[natsgo.Conn]
}

// NewBrokerSession creates an unconnected broker session.
func NewBrokerSession(cfg BrokerConfig, eng *engine.Engine) *BrokerSession {
	return &BrokerSession{
		cfg: cfg,
		eng: eng,
		log: logging.With().Str("component", "broker").Logger(),
	}
}

// Serve implements suture.Service: it connects, subscribes to the wildcard
// subject, and blocks until the context is canceled. Connect retries are
// owned by the client (RetryOnFailedConnect + unlimited reconnects), so a
// broker outage never crashes the service.
func (b *BrokerSession) Serve(ctx context.Context) error {
	b.mirrorState(model.SessionConnecting)

	opts := []natsgo.Option{
		natsgo.Name(b.cfg.ClientID),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.ConnectHandler(func(*natsgo.Conn) {
			b.mirrorState(model.SessionConnected)
			b.log.Info().Str("url", b.cfg.URL).Msg("Broker connected")
		}),
		natsgo.ReconnectHandler(func(*natsgo.Conn) {
			b.mirrorState(model.SessionConnected)
			b.log.Info().Msg("Broker reconnected")
		}),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			b.mirrorState(model.SessionReconnecting)
			if err != nil {
				b.log.Warn().Err(err).Msg("Broker connection lost")
			}
		}),
		natsgo.ClosedHandler(func(*natsgo.Conn) {
			b.mirrorState(model.SessionDisconnected)
		}),
	}

	conn, err := natsgo.Connect(b.cfg.URL, opts...)
	if err != nil {
		b.mirrorState(model.SessionDisconnected)
		return fmt.Errorf("broker connect: %w", err)
	}
	b.conn.Store(conn)

	sub, err := conn.Subscribe(b.cfg.Subject, func(msg *natsgo.Msg) {
		metrics.TransportMessages.WithLabelValues(string(model.ChannelBroker)).Inc()
		b.eng.Submit(engine.RawMessage{
			Topic: model.SubjectToTopic(msg.Subject),
			Body:  msg.Data,
		})
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("broker subscribe %s: %w", b.cfg.Subject, err)
	}
	b.log.Info().Str("subject", b.cfg.Subject).Msg("Broker subscription active")

	<-ctx.Done()

	//nolint:errcheck // teardown path; the connection is closing regardless
	sub.Unsubscribe()
	if err := conn.Drain(); err != nil {
		conn.Close()
	}
	b.mirrorState(model.SessionDisconnected)
	return ctx.Err()
}

// Publish implements engine.Publisher: canonical topics map to subjects.
func (b *BrokerSession) Publish(topic string, body []byte) error {
	conn := b.conn.Load()
	if conn == nil || !conn.IsConnected() {
		return fmt.Errorf("broker not connected")
	}
	metrics.CommandsPublished.WithLabelValues(topic).Inc()
	return conn.Publish(model.TopicToSubject(topic), body)
}

// String implements fmt.Stringer for supervisor logging.
func (b *BrokerSession) String() string { return "broker-session" }

func (b *BrokerSession) mirrorState(state model.SessionState) {
	metrics.TransportState.WithLabelValues(string(model.ChannelBroker)).
		Set(metrics.SessionStateValue(string(state)))
	b.eng.Submit(engine.SessionEvent{Channel: model.ChannelBroker, State: state})
}
