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

// Package graphql defines the engine-facing types the telemetry hook observes:
// the operation a client submitted and the execution result the engine produced.
//
// The types mirror the GraphQL over HTTP wire format so results decoded from an
// upstream server and results produced in-process by an engine are handled the
// same way.
package graphql
