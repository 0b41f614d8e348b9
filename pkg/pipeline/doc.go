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

// Package pipeline wires GraphQL execution to the Stellate collector.
//
// A Pipeline owns the delivery queue, the outbound client and the single
// delivery worker. Executions are timed on the caller's goroutine, turned into
// telemetry records and enqueued without blocking; the worker ships them in
// the background.
//
// Usage:
//
//	p, err := pipeline.New(cfg)
//	if err != nil {
//		return err
//	}
//	p.Start(ctx)
//	defer p.Shutdown(context.Background())
//
//	res := p.Execute(ctx, pipeline.Operation{Query: q}, func(ctx context.Context) *graphql.Result {
//		return engine.Execute(ctx, q)
//	})
//
// Telemetry failures are logged and never reach the caller. Delivery is best
// effort: records still queued when Shutdown's deadline passes are lost.
package pipeline
