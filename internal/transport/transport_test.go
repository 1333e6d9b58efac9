// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/tracewire/encoder"
	"github.com/tracewire/tracewire/internal/metrics"
	"github.com/tracewire/tracewire/internal/testutils"
)

func newTestSender(t *testing.T, endpoint string) (*Sender, *metrics.Metrics) {
	t.Helper()
	logger, _ := testutils.NewLogger()
	m := metrics.New(prometheus.NewPedanticRegistry())
	s, err := NewSender(Config{Endpoint: endpoint}, logger, m)
	require.NoError(t, err)
	return s, m
}

func TestSendOverTCP(t *testing.T) {
	var (
		gotBody   []byte
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Clone()
		assert.Equal(t, TracesPath, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender, m := newTestSender(t, srv.Listener.Addr().String())
	payload := []byte{0x92, 0x90, 0x90}
	require.NoError(t, sender.Send(context.Background(), payload, 0, encoder.FormatDict))

	assert.Equal(t, payload, gotBody)
	assert.Equal(t, "application/msgpack", gotHeader.Get("Content-Type"))
	assert.Equal(t, "0", gotHeader.Get("X-Tracewire-Trace-Count"))
	assert.Equal(t, "dict", gotHeader.Get("X-Tracewire-Format"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PayloadsSent.WithLabelValues("dict")))
	assert.Equal(t, float64(len(payload)), testutil.ToFloat64(m.PayloadBytes.WithLabelValues("dict")))
}

func TestSendOverUnixSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "tw-uds")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "agent.sock")

	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)

	received := make(chan int, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- len(body)
		w.WriteHeader(http.StatusOK)
	})}
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	sender, _ := newTestSender(t, "unix://"+socket)
	require.NoError(t, sender.Send(context.Background(), []byte{0x90}, 0, encoder.FormatInline))
	assert.Equal(t, 1, <-received)
}

func TestSendAgentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "malformed payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	sender, m := newTestSender(t, srv.Listener.Addr().String())
	err := sender.Send(context.Background(), []byte{0x90}, 1, encoder.FormatInline)
	require.ErrorContains(t, err, "status 400")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SendErrors))
}

func TestSendUnreachableAgent(t *testing.T) {
	sender, m := newTestSender(t, "127.0.0.1:1")
	err := sender.Send(context.Background(), []byte{0x90}, 1, encoder.FormatInline)
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SendErrors))
}

func TestNewSenderRequiresEndpoint(t *testing.T) {
	logger, _ := testutils.NewLogger()
	_, err := NewSender(Config{}, logger, metrics.New(prometheus.NewPedanticRegistry()))
	require.Error(t, err)
}
