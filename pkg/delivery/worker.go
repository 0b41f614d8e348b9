// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stellate/stellate-go/pkg/defaults"
	"github.com/stellate/stellate-go/pkg/errors"
	"github.com/stellate/stellate-go/pkg/telemetry"
)

// Source yields records in FIFO order, blocking until one is available.
type Source interface {
	Dequeue(ctx context.Context) (*telemetry.Record, error)
}

// Sender delivers a single record.
type Sender interface {
	SendRecord(ctx context.Context, rec *telemetry.Record) error
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDeliveryTimeout bounds each delivery attempt. Zero disables the per-record timeout.
func WithDeliveryTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.timeout = d
	}
}

// Worker drains a Source into a Sender, one record at a time.
type Worker struct {
	source  Source
	sender  Sender
	timeout time.Duration

	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewWorker creates a worker; it does nothing until Run is called.
func NewWorker(source Source, sender Sender, opts ...WorkerOption) *Worker {
	w := &Worker{
		source:  source,
		sender:  sender,
		timeout: defaults.DeliveryTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run delivers records until ctx ends or the source is closed and drained.
// It returns nil after a clean drain and ctx.Err() on cancellation.
// Run must not be called concurrently.
func (w *Worker) Run(ctx context.Context) error {
	slog.Debug("delivery worker started")
	for {
		rec, err := w.source.Dequeue(ctx)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeQueueClosed) {
				slog.Debug("delivery worker drained",
					"delivered", w.delivered.Load(),
					"failed", w.failed.Load())
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			w.failed.Add(1)
			return ctx.Err()
		}

		if err := w.deliver(ctx, rec); err != nil {
			w.failed.Add(1)
			slog.Warn("Failed to log metrics to Stellate", "error", err)
			continue
		}
		w.delivered.Add(1)
	}
}

// deliver sends one record inside a fault boundary.
func (w *Worker) deliver(ctx context.Context, rec *telemetry.Record) (err error) {
	start := time.Now()
	defer func() {
		deliveryDuration.Observe(time.Since(start).Seconds())
	}()

	defer func() {
		if r := recover(); r != nil {
			deliveryTotal.WithLabelValues(resultPanic).Inc()
			err = errors.New(errors.ErrCodeInternal, fmt.Sprintf("panic during delivery: %v", r))
		}
	}()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	err = w.sender.SendRecord(ctx, rec)
	switch {
	case err == nil:
		deliveryTotal.WithLabelValues(resultSuccess).Inc()
	case errors.IsCode(err, errors.ErrCodeDeliveryFailed), errors.IsCode(err, errors.ErrCodeUnauthorized):
		deliveryTotal.WithLabelValues(resultRejected).Inc()
	default:
		deliveryTotal.WithLabelValues(resultError).Inc()
	}
	return err
}

// Delivered returns the number of records accepted by the collector.
func (w *Worker) Delivered() uint64 {
	return w.delivered.Load()
}

// Failed returns the number of records lost to rejections, errors or panics.
func (w *Worker) Failed() uint64 {
	return w.failed.Load()
}
