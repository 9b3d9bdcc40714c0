// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

package api

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/aegisproject/aegisdeck/internal/logging"
)

// NewGuardianProxy builds a reverse proxy to the Guardian gateway. The
// dashboard uses it for gateway endpoints the engine does not model, such
// as manual blocklist edits.
func NewGuardianProxy(gatewayURL string, timeout time.Duration) (http.Handler, error) {
	target, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, fmt.Errorf("guardian proxy: parse gateway URL: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = &http.Transport{
		ResponseHeaderTimeout: timeout,
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Warn().Err(err).Str("path", r.URL.Path).Msg("Guardian proxy request failed")
		NewResponseWriter(w, r).Error(http.StatusBadGateway, ErrCodeServiceUnavailable,
			"guardian gateway unreachable")
	}
	return proxy, nil
}
