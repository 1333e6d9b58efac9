// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package model

// Span represents one traced operation as it is submitted to the agent.
//
// Start and Duration are expressed in nanoseconds. ParentID is zero for a
// root span. Type and Resource may be left empty; the encoders treat the
// empty string as a regular value rather than a special case.
type Span struct {
	Service  string `json:"service"`
	Name     string `json:"name"`
	Resource string `json:"resource"`
	Type     string `json:"type,omitempty"`

	TraceID  uint64 `json:"trace_id"`
	SpanID   uint64 `json:"span_id"`
	ParentID uint64 `json:"parent_id,omitempty"`

	Start    int64 `json:"start"`
	Duration int64 `json:"duration"`

	// Error is nonzero when the operation ended in an error.
	Error int32 `json:"error,omitempty"`

	Meta    map[string]string  `json:"meta,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Trace is an ordered sequence of spans belonging to one logical request.
// Array position is preserved by the encoders but carries no semantic
// weight beyond ordering.
type Trace []*Span

// SpanCount returns the number of spans across all given traces.
func SpanCount(traces []Trace) int {
	n := 0
	for _, t := range traces {
		n += len(t)
	}
	return n
}
