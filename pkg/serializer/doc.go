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

// Package serializer reads and writes structured data for the CLI, the
// configuration loader, and the proxy server.
//
// Supported formats:
//   - JSON: Machine-readable structured data with proper indentation
//   - YAML: Human-readable configuration format
//   - Table: Human-readable tabular output with flattened keys (write-only)
//
// Usage:
//
//	cfg, err := serializer.FromFile[config.Config]("stellate.yaml")
//
//	w := serializer.NewWriter(serializer.FormatYAML, os.Stdout)
//	if err := w.Serialize(ctx, result); err != nil {
//		return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
package serializer
