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

// Package delivery ships telemetry to the Stellate collector.
//
// Client performs the two outbound calls:
//
//	POST https://{service}.stellate.sh/log     stellate-logging-token: {token}
//	POST https://{service}.stellate.sh/schema  stellate-schema-token: {token}
//
// Both send application/json bodies and treat any status of 300 or above as a
// rejection. A rejection is returned as a StructuredError whose message carries
// the first 100 characters of the response body. There are no retries.
//
// Worker is the single consumer of the delivery queue. It dequeues one record
// at a time, sends it, and moves on whatever the outcome. Every record is sent
// inside its own fault boundary with its own timeout, so a network error or a
// panic in the transport loses that record only and never stops the loop.
//
// Usage:
//
//	client := delivery.NewClient("my-service", delivery.WithLoggingToken(token))
//	worker := delivery.NewWorker(q, client)
//	go worker.Run(ctx)
package delivery
