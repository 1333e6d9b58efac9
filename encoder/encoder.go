// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tracewire/tracewire/model"
)

// spanFieldCount is the fixed arity of an encoded span array. The field
// order is service, name, resource, trace_id, span_id, parent_id, start,
// duration, error, meta, metrics, type. Both formats share it; changing
// either breaks the agent contract.
const spanFieldCount = 12

// Format selects how string fields are written on the wire.
type Format int

const (
	// FormatInline embeds every string verbatim at its point of use.
	FormatInline Format = iota
	// FormatDict replaces every string with an index into a batch-wide
	// string table emitted ahead of the trace table.
	FormatDict
)

func (f Format) String() string {
	switch f {
	case FormatInline:
		return "inline"
	case FormatDict:
		return "dict"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat converts a flag or header value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "inline":
		return FormatInline, nil
	case "dict":
		return FormatDict, nil
	default:
		return 0, fmt.Errorf("unrecognized payload format %q", s)
	}
}

// ErrNilSpan is returned by EncodeTrace when a trace contains a nil span.
// The batch holds no partial state for the rejected trace.
var ErrNilSpan = errors.New("trace contains a nil span")

// errSizeMismatch signals that the precomputed payload size disagrees with
// the bytes actually written. This is an internal defect, not a condition
// callers can recover from.
var errSizeMismatch = errors.New("computed payload size does not match written bytes")

// Encoder accumulates traces into a batch and assembles them into one
// agent-consumable buffer.
//
// Encoders are single-owner: EncodeTrace and MakePayload must not be called
// concurrently. MakePayload transfers ownership of the returned buffer to
// the caller and resets the batch, so one instance can be reused
// indefinitely across flush cycles.
type Encoder interface {
	// EncodeTrace appends one trace to the current batch.
	EncodeTrace(t model.Trace) error

	// MakePayload assembles the accumulated batch into a finished buffer
	// and resets the batch. A batch with zero traces yields the minimal
	// valid payload.
	MakePayload() ([]byte, error)

	// Size returns the exact byte length MakePayload would return for the
	// batch accumulated so far. Callers use it to bound payload growth
	// before flushing.
	Size() int

	// TraceCount returns the number of traces in the current batch.
	TraceCount() int
}

// stringAppender is the single point where the two formats diverge: one
// shared span-encoding routine writes every string field through it.
type stringAppender interface {
	appendStr(b []byte, s string) []byte
}

// inlineStrings writes the string bytes directly into the trace region.
type inlineStrings struct{}

func (inlineStrings) appendStr(b []byte, s string) []byte {
	return appendString(b, s)
}

// dictStrings interns the string into the batch's table and writes the
// assigned index into the trace region instead.
type dictStrings struct {
	table *stringTable
}

func (d dictStrings) appendStr(b []byte, s string) []byte {
	return appendInt(b, int64(d.table.intern(s)))
}

type encoder struct {
	format  Format
	strings stringAppender
	dict    *stringTable // non-nil only for FormatDict

	traces []byte // concatenated per-trace encodings
	count  int    // traces in the batch
}

// New returns an empty Encoder producing the given wire format.
func New(format Format) Encoder {
	e := &encoder{format: format, strings: inlineStrings{}}
	if format == FormatDict {
		e.dict = newStringTable()
		e.strings = dictStrings{table: e.dict}
	}
	return e
}

func (e *encoder) EncodeTrace(t model.Trace) error {
	for _, s := range t {
		if s == nil {
			return ErrNilSpan
		}
	}
	b := appendArrayHeader(e.traces, len(t))
	for _, s := range t {
		b = e.appendSpan(b, s)
	}
	e.traces = b
	e.count++
	return nil
}

func (e *encoder) appendSpan(b []byte, s *model.Span) []byte {
	b = appendArrayHeader(b, spanFieldCount)
	b = e.strings.appendStr(b, s.Service)
	b = e.strings.appendStr(b, s.Name)
	b = e.strings.appendStr(b, s.Resource)
	b = appendID(b, s.TraceID)
	b = appendID(b, s.SpanID)
	b = appendID(b, s.ParentID)
	b = appendInt(b, s.Start)
	b = appendInt(b, s.Duration)
	b = appendInt(b, int64(s.Error))
	b = e.appendMeta(b, s.Meta)
	b = e.appendMetrics(b, s.Metrics)
	b = e.strings.appendStr(b, s.Type)
	return b
}

// Map entries are written in sorted key order so that identical input
// always produces identical bytes and identical string-table assignments.
func (e *encoder) appendMeta(b []byte, m map[string]string) []byte {
	b = appendMapHeader(b, len(m))
	for _, k := range sortedKeys(m) {
		b = e.strings.appendStr(b, k)
		b = e.strings.appendStr(b, m[k])
	}
	return b
}

func (e *encoder) appendMetrics(b []byte, m map[string]float64) []byte {
	b = appendMapHeader(b, len(m))
	for _, k := range sortedKeys(m) {
		b = e.strings.appendStr(b, k)
		b = appendFloat64(b, m[k])
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *encoder) Size() int {
	n := arrayHeaderSize(e.count) + len(e.traces)
	if e.dict != nil {
		// Outer 2-element array plus the string-table section.
		n += 1 + arrayHeaderSize(e.dict.len()) + len(e.dict.buf)
	}
	return n
}

func (e *encoder) TraceCount() int {
	return e.count
}

func (e *encoder) MakePayload() ([]byte, error) {
	total := e.Size()
	out := make([]byte, 0, total)
	if e.dict != nil {
		out = appendArrayHeader(out, 2)
		out = appendArrayHeader(out, e.dict.len())
		out = append(out, e.dict.buf...)
	}
	out = appendArrayHeader(out, e.count)
	out = append(out, e.traces...)
	if len(out) != total {
		return nil, fmt.Errorf("%w: computed %d, wrote %d", errSizeMismatch, total, len(out))
	}
	e.reset()
	return out, nil
}

// reset clears the batch so the encoder can immediately begin accumulating
// the next one. Buffers keep their capacity.
func (e *encoder) reset() {
	e.traces = e.traces[:0]
	e.count = 0
	if e.dict != nil {
		e.dict.reset()
	}
}
