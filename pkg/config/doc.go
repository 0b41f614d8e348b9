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

// Package config holds the settings of the telemetry pipeline and the proxy
// that hosts it.
//
// Values are layered: built-in defaults, then an optional YAML or JSON file,
// then environment variables, then whatever the caller (usually the CLI)
// overrides. Validate must pass before the configuration is used.
//
// Example file:
//
//	serviceName: my-service
//	loggingToken: stl8log_xxx
//	schemaToken: stl8sch_xxx
//	queue:
//	  capacity: 10000
//	  dropPolicy: drop-oldest
//	delivery:
//	  timeout: 10s
//	  compress: false
//	proxy:
//	  upstream: http://localhost:4000/graphql
//	  port: 8080
//
// Environment variables:
//
//	STELLATE_SERVICE_NAME, STELLATE_LOGGING_TOKEN, STELLATE_SCHEMA_TOKEN,
//	STELLATE_BASE_URL, STELLATE_UPSTREAM_URL, STELLATE_QUEUE_CAPACITY,
//	STELLATE_DROP_POLICY, PORT
package config
