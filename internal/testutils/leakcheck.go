// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyGoLeaks verifies that no goroutines are leaked at the end of a
// package's test run. Intended to be called from TestMain.
func VerifyGoLeaks(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The HTTP client's keep-alive connections outlive individual tests.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
