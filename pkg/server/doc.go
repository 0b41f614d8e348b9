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

// Package server hosts the instrumented GraphQL proxy over HTTP.
//
// The server wraps registered handlers with production middleware and exposes
// the operational endpoints next to them.
//
// Endpoints:
//
//	GET  /          service name, version and routes
//	GET  /health    liveness probe
//	GET  /ready     readiness probe (503 until Run starts and after shutdown begins)
//	GET  /metrics   Prometheus metrics
//	*    <handlers> handlers registered with WithHandler, e.g. the GraphQL proxy
//
// Middleware, outermost first:
//   - Metrics: request count, latency and in-flight gauge by route
//   - Request ID: accepts or generates X-Request-Id and forwards it
//   - Panic recovery: converts handler panics into 500 responses
//   - Rate limiting: token bucket, 429 with Retry-After when exceeded
//   - Logging: debug-level request start and completion
//
// Usage:
//
//	s := server.New(
//		server.WithName("stellate"),
//		server.WithVersion(version),
//		server.WithHandler("/graphql", proxyHandler),
//	)
//	if err := s.Run(ctx); err != nil {
//		return err
//	}
//
// Run blocks until ctx is canceled, then shuts down gracefully within the
// configured shutdown timeout. Environment variables PORT and
// SHUTDOWN_TIMEOUT_SECONDS override the defaults from NewConfig.
package server
