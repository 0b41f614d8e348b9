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

// Package defaults provides centralized configuration constants for the
// telemetry pipeline.
//
// This package defines timeout values, size limits, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Delivery timeouts: For outbound calls to the collector
//   - Server timeouts: For the proxy HTTP server
//   - HTTP client timeouts: For the shared outbound transport
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/stellate/stellate-go/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DeliveryTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Delivery: 10s per record, never inherited by the request path
//   - Schema sync: 30s, introspection payloads can be large
//   - Shutdown drain: 5s, shorter than the server shutdown budget
package defaults
