// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aegisproject/aegisdeck/internal/metrics"
)

// requestMetrics counts requests per method, chi route pattern, and status
// code. The pattern is resolved after the handler runs so path parameters
// collapse into one label value. Chi's wrapper keeps Hijacker support, which
// the websocket upgrade needs.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		// Hijacked connections (websocket upgrades) never write a status.
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.APIRequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Inc()
	})
}
