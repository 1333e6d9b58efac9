// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package transport delivers finished payload buffers to a local agent
// over HTTP, either via TCP or a Unix domain socket. It performs no
// retries: a failed batch is reported to the caller, who decides whether
// to drop it or abort the flush cycle.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tracewire/tracewire/encoder"
	"github.com/tracewire/tracewire/internal/metrics"
)

const (
	// ContentTypeMsgpack is the Content-Type of encoded payloads.
	ContentTypeMsgpack = "application/msgpack"
	// TraceCountHeader carries the number of traces in the payload body.
	TraceCountHeader = "X-Tracewire-Trace-Count"
	// FormatHeader names the wire format of the payload body.
	FormatHeader = "X-Tracewire-Format"
	// TracesPath is the agent route accepting encoded payloads.
	TracesPath = "/v1/traces"

	defaultTimeout = 10 * time.Second
)

// Config describes where and how payloads are delivered.
type Config struct {
	// Endpoint is the agent address, either "host:port" or
	// "unix:///path/to/agent.sock".
	Endpoint string
	// Timeout bounds one delivery attempt. Zero means 10s.
	Timeout time.Duration
}

// Sender posts payloads to the agent. It is safe for concurrent use.
type Sender struct {
	client *http.Client
	url    string
	logger *zap.Logger
	m      *metrics.Metrics
}

// NewSender builds a Sender for the configured endpoint.
func NewSender(cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Sender, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("transport: endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{Timeout: timeout}
	url := "http://" + cfg.Endpoint + TracesPath
	if socket, ok := strings.CutPrefix(cfg.Endpoint, "unix://"); ok {
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
		// The host is a placeholder; the dialer above pins the socket.
		url = "http://tracewire-agent" + TracesPath
	}

	return &Sender{
		client: client,
		url:    url,
		logger: logger,
		m:      m,
	}, nil
}

// Send delivers one finished payload. The payload is not mutated and may
// be discarded by the caller afterwards.
func (s *Sender) Send(ctx context.Context, payload []byte, traceCount int, format encoder.Format) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transport: building request: %w", err)
	}
	req.Header.Set("Content-Type", ContentTypeMsgpack)
	req.Header.Set(TraceCountHeader, strconv.Itoa(traceCount))
	req.Header.Set(FormatHeader, format.String())

	resp, err := s.client.Do(req)
	if err != nil {
		s.m.SendErrors.Inc()
		return fmt.Errorf("transport: sending payload: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		s.m.SendErrors.Inc()
		return fmt.Errorf("transport: agent returned status %d", resp.StatusCode)
	}

	s.m.PayloadsSent.WithLabelValues(format.String()).Inc()
	s.m.PayloadBytes.WithLabelValues(format.String()).Add(float64(len(payload)))
	s.logger.Debug("payload sent",
		zap.Int("bytes", len(payload)),
		zap.Int("traces", traceCount),
		zap.Stringer("format", format),
	)
	return nil
}
