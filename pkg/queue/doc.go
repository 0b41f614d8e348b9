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

// Package queue provides the in-memory FIFO that decouples request handling
// from telemetry delivery.
//
// Any number of goroutines may call Enqueue concurrently; it never blocks and
// never returns an error, reporting only whether the item was kept. A single
// consumer calls Dequeue, which blocks until an item is available, the context
// ends, or the queue is closed and drained. Items come out in the order their
// Enqueue calls completed.
//
// By default the queue is unbounded. A capacity can be set together with a
// DropPolicy deciding which item is discarded once the queue is full:
//
//	q := queue.New[*telemetry.Record](
//	    queue.WithCapacity(10000),
//	    queue.WithDropPolicy(queue.DropOldest),
//	)
package queue
