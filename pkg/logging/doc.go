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

// Package logging configures structured logging for the telemetry pipeline.
//
// It wraps the standard library slog package with a JSON handler on stderr,
// module and version attributes on every record, and source locations for
// debug output.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("stellate", "v1.0.0")
//	    slog.Info("proxy listening", "port", 8080)
//	}
//
// The LOG_LEVEL environment variable controls verbosity when no explicit level
// is given:
//
//	LOG_LEVEL=debug stellate serve
//
// Long-running processes can log to a rotated file instead:
//
//	logging.SetDefaultStructuredLoggerWithWriter(logging.NewFileWriter("/var/log/stellate.log"),
//	    "stellate", version, "info")
package logging
