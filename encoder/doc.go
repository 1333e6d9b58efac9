// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package encoder serializes batches of traces into the compact
// MessagePack-based payload understood by the local agent.
//
// Two wire formats are produced. The inline format embeds every string at
// its point of use and is understood by all payload consumers. The
// dictionary format deduplicates strings into a batch-wide string table and
// replaces each string field with an integer index into that table, which
// substantially shrinks payloads whose traces repeat service and operation
// names.
//
// An Encoder accumulates traces across EncodeTrace calls and emits a single
// finished buffer from MakePayload, after which it is reset and ready for
// the next batch. Encoders are not safe for concurrent use; give each
// goroutine its own instance or serialize access externally.
package encoder
