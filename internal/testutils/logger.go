// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Buffer is a goroutine-safe bytes.Buffer for capturing log output in tests.
type Buffer struct {
	sync.RWMutex
	b bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.b.Write(p)
}

func (b *Buffer) String() string {
	b.RLock()
	defer b.RUnlock()
	return b.b.String()
}

// Lines returns the log output split into individual JSON lines.
func (b *Buffer) Lines() []string {
	b.RLock()
	defer b.RUnlock()
	var lines []string
	for _, l := range bytes.Split(b.b.Bytes(), []byte{'\n'}) {
		if len(l) > 0 {
			lines = append(lines, string(l))
		}
	}
	return lines
}

// NewLogger returns a JSON logger that writes into an in-memory buffer.
// Timestamps are omitted so assertions can match output exactly.
func NewLogger() (*zap.Logger, *Buffer) {
	buf := &Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), buf
}
