// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package encoder

import (
	"encoding/binary"
	"math"
)

// MessagePack format tags, per the msgpack spec
// (https://github.com/msgpack/msgpack/blob/master/spec.md).
const (
	mpFixArray byte = 0x90
	mpArray16  byte = 0xdc
	mpArray32  byte = 0xdd

	mpFixMap byte = 0x80
	mpMap16  byte = 0xde
	mpMap32  byte = 0xdf

	mpFixStr byte = 0xa0
	mpStr8   byte = 0xd9
	mpStr16  byte = 0xda
	mpStr32  byte = 0xdb

	mpUint8  byte = 0xcc
	mpUint16 byte = 0xcd
	mpUint32 byte = 0xce
	mpUint64 byte = 0xcf

	mpInt8  byte = 0xd0
	mpInt16 byte = 0xd1
	mpInt32 byte = 0xd2
	mpInt64 byte = 0xd3

	mpFloat64 byte = 0xcb
)

// appendInt appends n using the narrowest integer representation that
// round-trips it exactly: positive fixint for [0,127], negative fixint for
// [-32,-1], then the 8/16/32/64-bit unsigned or signed forms.
func appendInt(b []byte, n int64) []byte {
	switch {
	case n >= 0:
		return appendUint(b, uint64(n))
	case n >= -32:
		return append(b, byte(n))
	case n >= math.MinInt8:
		return append(b, mpInt8, byte(n))
	case n >= math.MinInt16:
		return append(b, mpInt16, byte(n>>8), byte(n))
	case n >= math.MinInt32:
		b = append(b, mpInt32)
		return binary.BigEndian.AppendUint32(b, uint32(n))
	default:
		b = append(b, mpInt64)
		return binary.BigEndian.AppendUint64(b, uint64(n))
	}
}

// appendUint appends n using the narrowest unsigned representation.
func appendUint(b []byte, n uint64) []byte {
	switch {
	case n <= 127:
		return append(b, byte(n))
	case n <= math.MaxUint8:
		return append(b, mpUint8, byte(n))
	case n <= math.MaxUint16:
		return append(b, mpUint16, byte(n>>8), byte(n))
	case n <= math.MaxUint32:
		b = append(b, mpUint32)
		return binary.BigEndian.AppendUint32(b, uint32(n))
	default:
		b = append(b, mpUint64)
		return binary.BigEndian.AppendUint64(b, n)
	}
}

// appendID appends a span or trace identifier using the fixed 64-bit
// unsigned form regardless of magnitude. Identifiers are compared and
// parsed downstream and must keep a stable width on the wire.
func appendID(b []byte, id uint64) []byte {
	b = append(b, mpUint64)
	return binary.BigEndian.AppendUint64(b, id)
}

func appendFloat64(b []byte, f float64) []byte {
	b = append(b, mpFloat64)
	return binary.BigEndian.AppendUint64(b, math.Float64bits(f))
}

func appendArrayHeader(b []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(b, mpFixArray|byte(n))
	case n <= math.MaxUint16:
		return append(b, mpArray16, byte(n>>8), byte(n))
	default:
		b = append(b, mpArray32)
		return binary.BigEndian.AppendUint32(b, uint32(n))
	}
}

func appendMapHeader(b []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(b, mpFixMap|byte(n))
	case n <= math.MaxUint16:
		return append(b, mpMap16, byte(n>>8), byte(n))
	default:
		b = append(b, mpMap32)
		return binary.BigEndian.AppendUint32(b, uint32(n))
	}
}

// appendString appends the string header sized to len(s) followed by the
// raw bytes of s.
func appendString(b []byte, s string) []byte {
	n := len(s)
	switch {
	case n <= 31:
		b = append(b, mpFixStr|byte(n))
	case n <= math.MaxUint8:
		b = append(b, mpStr8, byte(n))
	case n <= math.MaxUint16:
		b = append(b, mpStr16, byte(n>>8), byte(n))
	default:
		b = append(b, mpStr32)
		b = binary.BigEndian.AppendUint32(b, uint32(n))
	}
	return append(b, s...)
}

// arrayHeaderSize returns the number of bytes appendArrayHeader emits for a
// container of n elements. Payload sizing and header writing must stay in
// lock-step; see MakePayload.
func arrayHeaderSize(n int) int {
	switch {
	case n <= 15:
		return 1
	case n <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}
