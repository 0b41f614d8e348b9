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

// Package proxy provides an instrumented GraphQL reverse proxy.
//
// The Handler accepts GraphQL over HTTP (POST with a JSON body, or GET with
// query, operationName and variables parameters), forwards the request to an
// upstream GraphQL server and returns the upstream response unchanged. Each
// forwarded operation is reported to an Observer, typically a
// pipeline.Pipeline, with the inbound request headers and the upstream status
// and headers.
//
// Usage:
//
//	h, err := proxy.New(cfg.Proxy.Upstream, p,
//		proxy.WithTimeout(cfg.Proxy.UpstreamTimeout),
//	)
//	mux.Handle("/graphql", h)
package proxy
