// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package tracegen generates synthetic traces, encodes them into agent
// payloads and flushes them through a sender. It exists to exercise the
// encoder and transport under realistic batch sizes.
package tracegen

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tracewire/tracewire/encoder"
	"github.com/tracewire/tracewire/internal/metrics"
)

// Sender delivers finished payloads; satisfied by transport.Sender.
type Sender interface {
	Send(ctx context.Context, payload []byte, traceCount int, format encoder.Format) error
}

// Config describes the load scenario.
type Config struct {
	Workers     int
	Traces      int
	ChildSpans  int
	Services    int
	MetaKeys    int
	Format      string
	FlushBytes  int
	FlushTraces int
	Pause       time.Duration
	Duration    time.Duration
	Service     string
}

// Flags registers config flags.
func (c *Config) Flags(fs *flag.FlagSet) {
	fs.IntVar(&c.Workers, "workers", 1, "Number of workers (goroutines) to run")
	fs.IntVar(&c.Traces, "traces", 1, "Number of traces to generate in each worker (ignored if duration is provided)")
	fs.IntVar(&c.ChildSpans, "spans", 1, "Number of child spans to generate for each trace")
	fs.IntVar(&c.Services, "services", 1, "Number of unique suffixes to add to service name when generating traces, e.g. tracegen-01 (but only one service per trace)")
	fs.IntVar(&c.MetaKeys, "meta-keys", 4, "Number of meta entries to attach to each span")
	fs.StringVar(&c.Format, "format", "dict", "Payload format to produce (inline|dict)")
	fs.IntVar(&c.FlushBytes, "flush-bytes", 1<<20, "Flush the batch once the pending payload reaches this many bytes")
	fs.IntVar(&c.FlushTraces, "flush-traces", 100, "Flush the batch once it holds this many traces")
	fs.DurationVar(&c.Pause, "pause", time.Microsecond, "How long to sleep between traces")
	fs.DurationVar(&c.Duration, "duration", 0, "For how long to run the test if greater than 0s (overrides -traces)")
	fs.StringVar(&c.Service, "service", "tracegen", "Service name prefix to use")
}

// Run executes the load scenario.
func Run(c *Config, sender Sender, m *metrics.Metrics, logger *zap.Logger) error {
	if c.Duration > 0 {
		c.Traces = 0
	} else if c.Traces <= 0 {
		return fmt.Errorf("either `traces` or `duration` must be greater than 0")
	}
	format, err := encoder.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	wg := sync.WaitGroup{}
	var running uint32 = 1
	for i := 0; i < c.Workers; i++ {
		wg.Add(1)
		w := worker{
			id:      i,
			format:  format,
			enc:     encoder.New(format),
			sender:  sender,
			metrics: m,
			Config:  *c,
			running: &running,
			wg:      &wg,
			logger:  logger.With(zap.Int("worker", i)),
		}

		go w.simulateTraces()
	}
	if c.Duration > 0 {
		time.Sleep(c.Duration)
		atomic.StoreUint32(&running, 0)
	}
	wg.Wait()
	return nil
}
