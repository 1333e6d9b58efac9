// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the prometheus instruments shared by the
// encoding and transport layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracewire"

// Metrics instruments the encode/flush pipeline. Counters carrying a
// "format" label distinguish the inline and dictionary wire formats.
type Metrics struct {
	TracesEncoded *prometheus.CounterVec
	SpansEncoded  *prometheus.CounterVec
	PayloadsSent  *prometheus.CounterVec
	PayloadBytes  *prometheus.CounterVec
	SendErrors    prometheus.Counter
}

// New registers the pipeline instruments with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TracesEncoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traces_encoded_total",
			Help:      "Number of traces appended to payload batches.",
		}, []string{"format"}),
		SpansEncoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spans_encoded_total",
			Help:      "Number of spans appended to payload batches.",
		}, []string{"format"}),
		PayloadsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_sent_total",
			Help:      "Number of finished payloads delivered to the agent.",
		}, []string{"format"}),
		PayloadBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_bytes_total",
			Help:      "Total payload bytes delivered to the agent.",
		}, []string{"format"}),
		SendErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Number of payload deliveries that failed.",
		}),
	}
}
