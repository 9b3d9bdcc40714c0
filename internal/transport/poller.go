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

// PollerConfig holds the two poll periods.
type PollerConfig struct {
	StatusInterval time.Duration
	StatsInterval  time.Duration
}

// Poller runs the two periodic Guardian fetch loops: the status poll and the
// per-client stats poll. Each tick fires on its own schedule regardless of
// how the previous one fared; a failed fetch is recorded and skipped, it
// never suspends the ticker or aborts the other loop.
type Poller struct {
	cfg    PollerConfig
	client *guardian.Client
	eng    *engine.Engine
	gate   *Gate
	log    zerolog.Logger
}

// NewPoller creates a poller using the given Guardian client.
func NewPoller(cfg PollerConfig, client *guardian.Client, eng *engine.Engine, gate *Gate) *Poller {
	return &Poller{
		cfg:    cfg,
		client: client,
		eng:    eng,
		gate:   gate,
		log:    logging.With().Str("component", "poller").Logger(),
	}
}

// Serve implements suture.Service.
func (p *Poller) Serve(ctx context.Context) error {
	statusTicker := time.NewTicker(p.cfg.StatusInterval)
	defer statusTicker.Stop()
	statsTicker := time.NewTicker(p.cfg.StatsInterval)
	defer statsTicker.Stop()

	// Prime both immediately so the dashboard does not sit empty for a
	// full period after startup.
	p.pollStatus(ctx)
	p.pollStats(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-statusTicker.C:
			p.pollStatus(ctx)
		case <-statsTicker.C:
			p.pollStats(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (p *Poller) String() string { return "guardian-poller" }

func (p *Poller) pollStatus(ctx context.Context) {
	if !p.gate.Open() {
		return
	}
	body, err := p.client.FetchStatus(ctx)
	if err != nil {
		metrics.PollErrors.WithLabelValues("status").Inc()
		p.log.Debug().Err(err).Msg("Status poll failed")
		return
	}
	p.eng.Submit(engine.StatusSnapshot{Body: body})
}

func (p *Poller) pollStats(ctx context.Context) {
	if !p.gate.Open() {
		return
	}
	body, err := p.client.FetchStats(ctx)
	if err != nil {
		metrics.PollErrors.WithLabelValues("stats").Inc()
		p.log.Debug().Err(err).Msg("Stats poll failed")
		return
	}
	clients, err := engine.DecodeStats(body)
	if err != nil {
		metrics.PollErrors.WithLabelValues("stats").Inc()
		p.log.Debug().Err(err).Msg("Stats payload malformed")
		return
	}
	p.eng.Submit(engine.StatsSnapshot{Clients: clients})
}
