// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package fakeagent

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"github.com/tracewire/tracewire/encoder"
)

const spanFieldCount = 12

// PayloadStats summarizes a decoded payload.
type PayloadStats struct {
	Traces  int
	Spans   int
	Strings int // dictionary entries; zero for the inline format
}

// InspectPayload walks an encoded payload and returns its shape. It
// validates container structure and span arity but does not materialize
// spans; the fake agent only needs to confirm that a payload is
// well-formed and report what it received.
func InspectPayload(format encoder.Format, b []byte) (PayloadStats, error) {
	var stats PayloadStats

	if format == encoder.FormatDict {
		outer, rest, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return stats, fmt.Errorf("reading outer array: %w", err)
		}
		if outer != 2 {
			return stats, fmt.Errorf("outer array has %d elements, want 2", outer)
		}
		b = rest

		tableLen, rest, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return stats, fmt.Errorf("reading string table header: %w", err)
		}
		b = rest
		for i := uint32(0); i < tableLen; i++ {
			_, rest, err := msgp.ReadStringBytes(b)
			if err != nil {
				return stats, fmt.Errorf("reading string table entry %d: %w", i, err)
			}
			b = rest
		}
		stats.Strings = int(tableLen)
	}

	traceCount, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return stats, fmt.Errorf("reading trace table header: %w", err)
	}
	stats.Traces = int(traceCount)

	for i := uint32(0); i < traceCount; i++ {
		spanCount, rest, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return stats, fmt.Errorf("reading trace %d header: %w", i, err)
		}
		b = rest
		for j := uint32(0); j < spanCount; j++ {
			arity, rest, err := msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return stats, fmt.Errorf("reading span header: %w", err)
			}
			if arity != spanFieldCount {
				return stats, fmt.Errorf("span has %d fields, want %d", arity, spanFieldCount)
			}
			b = rest
			for f := uint32(0); f < arity; f++ {
				b, err = msgp.Skip(b)
				if err != nil {
					return stats, fmt.Errorf("skipping span field %d: %w", f, err)
				}
			}
		}
		stats.Spans += int(spanCount)
	}

	if len(b) != 0 {
		return stats, fmt.Errorf("%d trailing bytes after trace table", len(b))
	}
	return stats, nil
}
