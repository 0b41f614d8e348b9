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

// Package fingerprint computes the 32-bit text digests used to correlate
// telemetry payloads without shipping their content.
//
// The digest is a polynomial rolling hash with multiplier 31 evaluated over
// Unicode code points and truncated to 32 bits after every step. It is not a
// cryptographic hash; collectors use it only to group identical responses and
// variable sets. The exact recurrence must not change, since existing collectors
// compare values produced by other client libraries.
//
// Usage:
//
//	id := fingerprint.String(`{"id": 1}`)
//	id = fingerprint.Bytes(payload)
package fingerprint
