// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aegisproject/aegisdeck/internal/engine"
	"github.com/aegisproject/aegisdeck/internal/guardian"
	"github.com/aegisproject/aegisdeck/internal/logging"
	"github.com/aegisproject/aegisdeck/internal/metrics"
	"github.com/aegisproject/aegisdeck/internal/model"
)

// StreamSession maintains the Guardian push-stream connection. Any stream
// termination, clean or not, schedules a reconnect after a fixed delay; the
// delay never grows. Attempts are skipped while the reachability gate is
// closed so an offline gateway does not burn connection attempts.
type StreamSession struct {
	client     *guardian.Client
	eng        *engine.Engine
	gate       *Gate
	retryDelay time.Duration
	state      model.SessionState
	log        zerolog.Logger
}

// NewStreamSession creates a stream session using the given Guardian client.
func NewStreamSession(client *guardian.Client, eng *engine.Engine, gate *Gate, retryDelay time.Duration) *StreamSession {
	return &StreamSession{
		client:     client,
		eng:        eng,
		gate:       gate,
		retryDelay: retryDelay,
		log:        logging.With().Str("component", "stream").Logger(),
	}
}

// Serve implements suture.Service. The reconnect loop lives here rather than
// in the supervisor so that a dropped stream counts as a normal cycle, not a
// service failure.
func (s *StreamSession) Serve(ctx context.Context) error {
	for {
		if s.gate.Open() {
			s.runOnce(ctx)
		}

		select {
		case <-ctx.Done():
			s.mirrorState(model.SessionDisconnected)
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *StreamSession) String() string { return "stream-session" }

func (s *StreamSession) runOnce(ctx context.Context) {
	s.mirrorState(model.SessionConnecting)

	err := s.client.StreamEvents(ctx, func() {
		// The gateway accepted the stream; it may stay quiet for a while.
		s.mirrorState(model.SessionConnected)
	}, func(data []byte) {
		metrics.TransportMessages.WithLabelValues(string(model.ChannelStream)).Inc()
		s.eng.Submit(engine.StreamMessage{Body: data})
	})

	if ctx.Err() != nil {
		return
	}

	metrics.StreamReconnects.Inc()
	s.mirrorState(model.SessionReconnecting)
	s.log.Debug().Err(err).Dur("retry_in", s.retryDelay).Msg("Event stream ended, scheduling reconnect")
}

// mirrorState publishes transitions only. Called from the Serve goroutine.
func (s *StreamSession) mirrorState(state model.SessionState) {
	if state == s.state {
		return
	}
	s.state = state
	metrics.TransportState.WithLabelValues(string(model.ChannelStream)).
		Set(metrics.SessionStateValue(string(state)))
	s.eng.Submit(engine.SessionEvent{Channel: model.ChannelStream, State: state})
}
