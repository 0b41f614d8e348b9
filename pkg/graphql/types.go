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

package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Request is a single GraphQL operation as submitted by a client.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Location points at a line and column in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a structured execution error as defined by the GraphQL response format.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Path))
	for _, p := range e.Path {
		parts = append(parts, fmt.Sprint(p))
	}
	return fmt.Sprintf("%s (path: %s)", e.Message, strings.Join(parts, "."))
}

// Clone returns a deep copy of the error's slices and a shallow copy of its extensions.
func (e Error) Clone() Error {
	out := Error{Message: e.Message}
	if e.Locations != nil {
		out.Locations = append([]Location(nil), e.Locations...)
	}
	if e.Path != nil {
		out.Path = append([]any(nil), e.Path...)
	}
	if e.Extensions != nil {
		out.Extensions = make(map[string]any, len(e.Extensions))
		for k, v := range e.Extensions {
			out.Extensions[k] = v
		}
	}
	return out
}

// Result is the outcome of executing one operation. A nil field is absent from
// the serialized response.
type Result struct {
	Data       any            `json:"data,omitempty"`
	Errors     []Error        `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// HasErrors reports whether execution produced at least one error.
func (r *Result) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ErrorResult builds a result carrying a single error and no data.
func ErrorResult(message string) *Result {
	return &Result{Errors: []Error{{Message: message}}}
}

// DecodeResult parses a GraphQL response body. Numbers are kept as json.Number
// so re-serialization reproduces the original digits.
func DecodeResult(body []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var res Result
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode graphql result: %w", err)
	}
	return &res, nil
}

// ParseQuery extracts an operation from URL query parameters, the GET form of
// GraphQL over HTTP.
func ParseQuery(values url.Values) (*Request, error) {
	req := &Request{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
	}
	if raw := values.Get("variables"); raw != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&req.Variables); err != nil {
			return nil, fmt.Errorf("invalid variables parameter: %w", err)
		}
	}
	return req, nil
}

// ParseBody extracts an operation from a JSON request body.
func ParseBody(body []byte) (*Request, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid graphql request body: %w", err)
	}
	return &req, nil
}
