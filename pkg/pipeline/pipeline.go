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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stellate/stellate-go/pkg/config"
	"github.com/stellate/stellate-go/pkg/defaults"
	"github.com/stellate/stellate-go/pkg/delivery"
	"github.com/stellate/stellate-go/pkg/errors"
	"github.com/stellate/stellate-go/pkg/graphql"
	"github.com/stellate/stellate-go/pkg/queue"
	"github.com/stellate/stellate-go/pkg/telemetry"
)

// Operation describes one GraphQL execution. Request and Response are optional.
type Operation struct {
	Query         string
	OperationName string
	Variables     map[string]any
	Request       telemetry.RequestInfo
	Response      telemetry.ResponseInfo
}

// ExecuteFunc runs the GraphQL engine.
type ExecuteFunc func(ctx context.Context) *graphql.Result

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSender replaces the collector client used for telemetry records.
// Schema sync still goes through the configured client.
func WithSender(s delivery.Sender) Option {
	return func(p *Pipeline) {
		p.sender = s
	}
}

// WithClientOptions appends options to the collector client.
func WithClientOptions(opts ...delivery.ClientOption) Option {
	return func(p *Pipeline) {
		p.clientOpts = append(p.clientOpts, opts...)
	}
}

// WithClock overrides the time source used to bracket executions.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline is the execution hook together with its delivery worker.
type Pipeline struct {
	cfg        *config.Config
	client     *delivery.Client
	clientOpts []delivery.ClientOption
	sender     delivery.Sender
	queue      *queue.Queue[*telemetry.Record]
	worker     *delivery.Worker
	now        func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
}

// New validates cfg and assembles the queue, client and worker. The worker
// does not run until Start is called; records produced before that are queued.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := queue.ParseDropPolicy(cfg.Queue.DropPolicy)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid drop policy", err)
	}

	p := &Pipeline{
		cfg:  cfg,
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	clientOpts := []delivery.ClientOption{
		delivery.WithLoggingToken(cfg.LoggingToken),
		delivery.WithSchemaToken(cfg.SchemaToken),
		delivery.WithCompression(cfg.Delivery.Compress),
		delivery.WithUserAgent(cfg.Delivery.UserAgent),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, delivery.WithBaseURL(cfg.BaseURL))
	}
	p.client = delivery.NewClient(cfg.ServiceName, append(clientOpts, p.clientOpts...)...)
	if p.sender == nil {
		p.sender = p.client
	}

	p.queue = queue.New[*telemetry.Record](
		queue.WithCapacity(cfg.Queue.Capacity),
		queue.WithDropPolicy(policy),
		queue.WithDropHook(func() {
			recordsTotal.WithLabelValues(outcomeDropped).Inc()
		}),
	)
	p.worker = delivery.NewWorker(depthSource{q: p.queue}, p.sender,
		delivery.WithDeliveryTimeout(cfg.Delivery.Timeout))

	slog.Debug("telemetry pipeline created",
		"service", cfg.ServiceName,
		"collector", p.client.BaseURL,
		"queueCapacity", cfg.Queue.Capacity,
		"dropPolicy", policy)
	return p, nil
}

// Start launches the delivery worker. Only the first call has an effect.
// Canceling ctx stops the worker without draining; use Shutdown to drain.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	g, gctx := errgroup.WithContext(workerCtx)
	g.Go(func() error {
		return p.worker.Run(gctx)
	})
	go func() {
		p.runErr = g.Wait()
		close(p.done)
	}()
	slog.Info("telemetry worker started", "service", p.cfg.ServiceName)
}

// Execute runs exec, returns its result unchanged and enqueues a telemetry
// record for the execution. A panic in exec propagates to the caller and no
// record is produced.
func (p *Pipeline) Execute(ctx context.Context, op Operation, exec ExecuteFunc) *graphql.Result {
	start := p.now()
	result := exec(ctx)
	end := p.now()

	p.Observe(telemetry.Input{
		Query:         op.Query,
		OperationName: op.OperationName,
		Variables:     op.Variables,
		Result:        result,
		Start:         start,
		End:           end,
		Request:       op.Request,
		Response:      op.Response,
	})
	return result
}

// Observe records an execution timed by the caller. It never blocks on
// delivery and never panics.
func (p *Pipeline) Observe(in telemetry.Input) {
	defer func() {
		if r := recover(); r != nil {
			recordsTotal.WithLabelValues(outcomeBuildError).Inc()
			slog.Error("Failed to log metrics to Stellate", "error", fmt.Sprint(r))
		}
	}()

	rec, err := telemetry.Build(in)
	if err != nil {
		recordsTotal.WithLabelValues(outcomeBuildError).Inc()
		slog.Error("Failed to log metrics to Stellate", "error", err)
		return
	}

	if !p.queue.Enqueue(rec) {
		slog.Debug("telemetry record dropped", "closed", p.queue.Closed())
		return
	}
	recordsTotal.WithLabelValues(outcomeEnqueued).Inc()
	queueDepth.Set(float64(p.queue.Len()))
}

// SyncSchema uploads schema to the collector. Failures are logged and returned.
func (p *Pipeline) SyncSchema(ctx context.Context, schema any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaults.SchemaSyncTimeout)
		defer cancel()
	}

	if err := p.client.SyncSchema(ctx, schema); err != nil {
		slog.Error("Failed to sync schema to Stellate", "error", err)
		return err
	}
	slog.Info("schema synced to Stellate", "service", p.cfg.ServiceName)
	return nil
}

// Shutdown stops accepting records and waits for the worker to drain the
// queue. Without a deadline on ctx the configured drain timeout applies. When
// the wait ends early the worker is canceled and the remaining records are lost.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.queue.Close()

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		if n := p.queue.Len(); n > 0 {
			slog.Warn("telemetry worker never started, discarding records", "pending", n)
		}
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := p.cfg.Delivery.DrainTimeout
		if timeout <= 0 {
			timeout = defaults.DrainTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-p.done:
		p.cancel()
		slog.Info("telemetry worker drained",
			"delivered", p.worker.Delivered(),
			"failed", p.worker.Failed(),
			"dropped", p.queue.Dropped())
		return p.runErr
	case <-ctx.Done():
		p.cancel()
		<-p.done
		pending := p.queue.Len()
		queueDepth.Set(float64(pending))
		slog.Warn("telemetry drain interrupted", "pending", pending)
		return errors.WrapWithContext(errors.ErrCodeTimeout, "telemetry drain interrupted", ctx.Err(),
			map[string]any{"pending": pending})
	}
}

// Stats is a point-in-time view of the pipeline counters.
type Stats struct {
	Queued    int    `json:"queued"`
	Dropped   uint64 `json:"dropped"`
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Queued:    p.queue.Len(),
		Dropped:   p.queue.Dropped(),
		Delivered: p.worker.Delivered(),
		Failed:    p.worker.Failed(),
	}
}

// depthSource keeps the queue depth gauge current as the worker consumes.
type depthSource struct {
	q *queue.Queue[*telemetry.Record]
}

func (s depthSource) Dequeue(ctx context.Context) (*telemetry.Record, error) {
	rec, err := s.q.Dequeue(ctx)
	queueDepth.Set(float64(s.q.Len()))
	return rec, err
}
