// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

package tracegen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tracewire/tracewire/encoder"
	"github.com/tracewire/tracewire/internal/metrics"
	"github.com/tracewire/tracewire/model"
)

type worker struct {
	Config
	running *uint32 // pointer to shared flag that indicates it's time to stop the test
	id      int     // worker id
	format  encoder.Format
	enc     encoder.Encoder // exclusively owned by this worker
	sender  Sender
	metrics *metrics.Metrics
	wg      *sync.WaitGroup // notify when done
	logger  *zap.Logger
}

const fakeSpanDuration = 123 * time.Microsecond

func (w *worker) simulateTraces() {
	// Deterministic per worker so repeated runs produce the same id stream.
	rng := rand.New(rand.NewSource(int64(w.id) + 1))
	var i int
	for atomic.LoadUint32(w.running) == 1 {
		t := w.generateTrace(rng)
		if err := w.enc.EncodeTrace(t); err != nil {
			w.logger.Error("cannot encode trace", zap.Error(err))
			break
		}
		w.metrics.TracesEncoded.WithLabelValues(w.format.String()).Inc()
		w.metrics.SpansEncoded.WithLabelValues(w.format.String()).Add(float64(len(t)))

		if w.enc.Size() >= w.FlushBytes || w.enc.TraceCount() >= w.FlushTraces {
			w.flush()
		}

		time.Sleep(w.Pause)

		i++
		if w.Traces != 0 {
			if i >= w.Traces {
				break
			}
		}
	}
	w.flush()
	w.logger.Info(fmt.Sprintf("Worker %d generated %d traces", w.id, i))
	w.wg.Done()
}

func (w *worker) generateTrace(rng *rand.Rand) model.Trace {
	traceID := rng.Uint64()
	service := w.Service
	if w.Services > 1 {
		service = fmt.Sprintf("%s-%02d", w.Service, rng.Intn(w.Services))
	}
	start := time.Now().Add(-fakeSpanDuration)

	root := &model.Span{
		Service:  service,
		Name:     "lets-go",
		Resource: "/start",
		Type:     "web",
		TraceID:  traceID,
		SpanID:   rng.Uint64(),
		Start:    start.UnixNano(),
		Duration: fakeSpanDuration.Nanoseconds(),
		Meta:     w.generateMeta(rng),
		Metrics:  map[string]float64{"_sampling_priority_v1": 1},
	}
	t := model.Trace{root}
	for i := 0; i < w.ChildSpans; i++ {
		t = append(t, &model.Span{
			Service:  service,
			Name:     "okey-dokey",
			Resource: fmt.Sprintf("/child/%d", i),
			Type:     "web",
			TraceID:  traceID,
			SpanID:   rng.Uint64(),
			ParentID: root.SpanID,
			Start:    start.UnixNano() + int64(i),
			Duration: (fakeSpanDuration / 2).Nanoseconds(),
			Meta:     w.generateMeta(rng),
		})
	}
	return t
}

func (w *worker) generateMeta(rng *rand.Rand) map[string]string {
	meta := make(map[string]string, w.MetaKeys)
	for i := 0; i < w.MetaKeys; i++ {
		meta[fmt.Sprintf("attr-%02d", i)] = fmt.Sprintf("value-%03d", rng.Intn(1000))
	}
	return meta
}

// flush assembles the pending batch and hands it to the sender. A failed
// batch is dropped; the encoder was already reset by MakePayload.
func (w *worker) flush() {
	count := w.enc.TraceCount()
	if count == 0 {
		return
	}
	payload, err := w.enc.MakePayload()
	if err != nil {
		w.logger.Error("cannot assemble payload", zap.Error(err))
		return
	}
	if err := w.sender.Send(context.Background(), payload, count, w.format); err != nil {
		w.logger.Error("cannot send payload", zap.Error(err), zap.Int("traces", count))
	}
}
