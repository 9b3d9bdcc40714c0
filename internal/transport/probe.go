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
)

// Probe periodically checks gateway liveness with a lightweight request and
// flips the shared gate. Only the stream and poll loops consult the gate;
// the broker session keeps its own lifecycle.
type Probe struct {
	client   *guardian.Client
	eng      *engine.Engine
	gate     *Gate
	interval time.Duration
	log      zerolog.Logger
}

// NewProbe creates a reachability probe.
func NewProbe(client *guardian.Client, eng *engine.Engine, gate *Gate, interval time.Duration) *Probe {
	return &Probe{
		client:   client,
		eng:      eng,
		gate:     gate,
		interval: interval,
		log:      logging.With().Str("component", "probe").Logger(),
	}
}

// Serve implements suture.Service.
func (p *Probe) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (p *Probe) String() string { return "gateway-probe" }

func (p *Probe) check(ctx context.Context) {
	reachable := p.client.Probe(ctx)
	was := p.gate.Open()
	p.gate.Set(reachable)

	if reachable {
		metrics.GatewayReachable.Set(1)
	} else {
		metrics.GatewayReachable.Set(0)
	}
	if reachable != was {
		p.log.Info().Bool("reachable", reachable).Msg("Gateway reachability changed")
	}
	p.eng.Submit(engine.ReachabilityEvent{Reachable: reachable})
}
