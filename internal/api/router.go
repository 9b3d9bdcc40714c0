// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aegisproject/aegisdeck/internal/config"
)

// Router assembles the full HTTP surface.
type Router struct {
	cfg      config.ServerConfig
	handlers *Handlers
	proxy    http.Handler
}

// NewRouter creates a router. guardianProxy may be nil to disable the
// pass-through endpoints.
func NewRouter(cfg config.ServerConfig, handlers *Handlers, guardianProxy http.Handler) *Router {
	return &Router{cfg: cfg, handlers: handlers, proxy: guardianProxy}
}

// Setup wires all routes and middleware.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints sit outside the rate limiter so probes never 429.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handlers.Health)
		r.Get("/live", router.handlers.HealthLive)
		r.Get("/ready", router.handlers.HealthReady)
	})

	// Read endpoints over the current snapshot.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(300, time.Minute))

		r.Get("/state", router.handlers.GetState)
		r.Get("/devices", router.handlers.GetDevices)
		r.Get("/traffic", router.handlers.GetTraffic)
		r.Get("/events", router.handlers.GetEvents)
		r.Get("/guardian", router.handlers.GetGuardian)
		r.Get("/ws", router.handlers.ServeWS)

		// Command endpoints get a tighter limit; a stuck dashboard retry
		// loop must not flood the broker or the devices.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(30, time.Minute))

			r.Post("/address", router.handlers.PostAddress)
			r.Post("/control", router.handlers.PostControl)
			r.Post("/publish", router.handlers.PostPublish)
			r.Post("/reset", router.handlers.PostReset)
		})
	})

	// Pass-through to the Guardian gateway for endpoints the engine does
	// not model, stripped of the /api/guardian prefix.
	if router.proxy != nil {
		r.Handle("/api/guardian/*", http.StripPrefix("/api/guardian", router.proxy))
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
