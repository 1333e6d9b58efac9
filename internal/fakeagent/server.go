// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package fakeagent implements a local collector endpoint that accepts
// encoded trace payloads, verifies their structure and exposes reception
// metrics. It stands in for the real agent in integration and load tests.
package fakeagent

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tracewire/tracewire/encoder"
	"github.com/tracewire/tracewire/internal/transport"
	"github.com/tracewire/tracewire/internal/version"
)

// maxPayloadBytes bounds a single request body. Payload growth is the
// sender's responsibility; anything larger than this is a misbehaving client.
const maxPayloadBytes = 64 << 20

type receiverMetrics struct {
	payloads *prometheus.CounterVec
	spans    *prometheus.CounterVec
	rejected prometheus.Counter
}

func newReceiverMetrics(reg prometheus.Registerer) *receiverMetrics {
	f := promauto.With(reg)
	return &receiverMetrics{
		payloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fakeagent",
			Name:      "payloads_received_total",
			Help:      "Number of well-formed payloads received.",
		}, []string{"format"}),
		spans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fakeagent",
			Name:      "spans_received_total",
			Help:      "Number of spans received in well-formed payloads.",
		}, []string{"format"}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fakeagent",
			Name:      "payloads_rejected_total",
			Help:      "Number of payloads rejected as malformed.",
		}),
	}
}

type server struct {
	logger  *zap.Logger
	metrics *receiverMetrics
}

// NewHandler builds the fake agent's HTTP handler: the traces endpoint,
// a prometheus metrics endpoint and a version endpoint.
func NewHandler(logger *zap.Logger, reg *prometheus.Registry) http.Handler {
	s := &server{
		logger:  logger,
		metrics: newReceiverMetrics(reg),
	}

	r := mux.NewRouter()
	r.HandleFunc(transport.TracesPath, s.handleTraces).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(r)
}

func (s *server) handleTraces(w http.ResponseWriter, r *http.Request) {
	format, err := encoder.ParseFormat(r.Header.Get(transport.FormatHeader))
	if err != nil {
		s.reject(w, "unknown payload format", err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		s.reject(w, "cannot read payload body", err)
		return
	}

	stats, err := InspectPayload(format, body)
	if err != nil {
		s.reject(w, "malformed payload", err)
		return
	}

	s.metrics.payloads.WithLabelValues(format.String()).Inc()
	s.metrics.spans.WithLabelValues(format.String()).Add(float64(stats.Spans))
	s.logger.Info("payload received",
		zap.Stringer("format", format),
		zap.Int("bytes", len(body)),
		zap.Int("traces", stats.Traces),
		zap.Int("spans", stats.Spans),
		zap.Int("strings", stats.Strings),
		zap.String("declared_trace_count", r.Header.Get(transport.TraceCountHeader)),
	)
	w.WriteHeader(http.StatusOK)
}

func (s *server) reject(w http.ResponseWriter, msg string, err error) {
	s.metrics.rejected.Inc()
	s.logger.Warn(msg, zap.Error(err))
	http.Error(w, msg, http.StatusBadRequest)
}

func (s *server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Get())
}

type recoveryLogger struct {
	logger *zap.Logger
}

func (r recoveryLogger) Println(args ...any) {
	r.logger.Sugar().Error(args...)
}
