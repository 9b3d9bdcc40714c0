// AegisDeck - Security Monitoring Dashboard Engine
// Copyright 2026 Aegis Project
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aegisproject/aegisdeck

// Package guardian is the HTTP client for the Guardian IPS gateway: the
// aggregate status and per-client stats endpoints, the server-push event
// stream, and the reachability probe that gates the LAN-only channels.
package guardian

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Guardian gateway. All methods are context-aware; the
// caller owns retry policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. timeout applies to status/stats/probe
// requests; the event stream uses a client without a timeout since it is
// long-lived by design.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured gateway address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchStatus fetches the aggregate status snapshot body from /status.
func (c *Client) FetchStatus(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/status")
}

// FetchStats fetches the per-client stats snapshot body from /stats.
func (c *Client) FetchStats(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/stats")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Probe performs a lightweight HEAD reachability check against the gateway.
// Any response at all counts as reachable; only transport errors fail.
func (c *Client) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	//nolint:errcheck
	resp.Body.Close()
	return true
}

// StreamEvents opens the /events push stream and invokes handler with each
// message's data payload until the stream fails or ctx is canceled. The
// connected callback fires once, as soon as the server accepts the stream,
// so callers can report a live-but-quiet stream as connected. It always
// returns a non-nil error describing why the stream ended; the caller owns
// the fixed-delay reconnect policy.
func (c *Client) StreamEvents(ctx context.Context, connected func(), handler func(data []byte)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events", nil)
	if err != nil {
		return fmt.Errorf("build events request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Long-lived connection: no client timeout, cancellation via ctx.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open event stream: unexpected status %d", resp.StatusCode)
	}
	if connected != nil {
		connected()
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		// Server-sent events: only data lines carry payloads; comments
		// (leading colon) are keepalives.
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		data := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
		if len(data) == 0 {
			continue
		}
		handler(data)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("event stream read: %w", err)
	}
	return fmt.Errorf("event stream closed by gateway")
}
