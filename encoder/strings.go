// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package encoder

// stringTable assigns batch-scoped indices to distinct strings in
// first-seen order and accumulates their encoded bytes for the payload's
// string-table section. It persists across trace encodings within one
// batch, so strings repeated between traces are stored once.
type stringTable struct {
	indices map[string]int
	buf     []byte // msgpack-encoded strings, in index order
}

func newStringTable() *stringTable {
	return &stringTable{indices: make(map[string]int)}
}

// intern returns the index assigned to s, assigning the next free index and
// appending the encoded string on first sight. The empty string is interned
// like any other value.
func (st *stringTable) intern(s string) int {
	if idx, ok := st.indices[s]; ok {
		return idx
	}
	idx := len(st.indices)
	st.indices[s] = idx
	st.buf = appendString(st.buf, s)
	return idx
}

// len returns the number of distinct strings interned since the last reset.
func (st *stringTable) len() int {
	return len(st.indices)
}

func (st *stringTable) reset() {
	clear(st.indices)
	st.buf = st.buf[:0]
}
