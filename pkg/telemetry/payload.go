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

package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stellate/stellate-go/pkg/graphql"
)

// payloadIndent matches the indentation collectors have seen from other client
// libraries, so payload sizes line up across implementations.
const payloadIndent = "    "

// ResultPayload serializes the present members of res (data, errors,
// extensions) as indented JSON. Map keys are emitted in sorted order, so the
// output is deterministic for a given result. A nil result serializes as {}.
func ResultPayload(res *graphql.Result) ([]byte, error) {
	doc := make(map[string]any, 3)
	if res != nil {
		if res.Data != nil {
			doc["data"] = res.Data
		}
		if res.Errors != nil {
			doc["errors"] = res.Errors
		}
		if res.Extensions != nil {
			doc["extensions"] = res.Extensions
		}
	}
	return encode(doc, payloadIndent)
}

// VariablesPayload serializes variables compactly, treating nil as an empty mapping.
func VariablesPayload(vars map[string]any) ([]byte, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	return encode(vars, "")
}

func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
