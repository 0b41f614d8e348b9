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
	"strings"
	"time"

	"github.com/stellate/stellate-go/pkg/fingerprint"
	"github.com/stellate/stellate-go/pkg/graphql"
)

// Input is everything Build needs about one execution.
type Input struct {
	Query         string
	OperationName string
	Variables     map[string]any
	Result        *graphql.Result

	// Start and End bracket the engine call.
	Start time.Time
	End   time.Time

	// Request and Response are optional.
	Request  RequestInfo
	Response ResponseInfo
}

// Build extracts a Record from in. It fails only when the result or variables
// cannot be serialized as JSON.
func Build(in Input) (*Record, error) {
	payload, err := ResultPayload(in.Result)
	if err != nil {
		return nil, err
	}
	vars, err := VariablesPayload(in.Variables)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Operation:            in.Query,
		Method:               DefaultMethod,
		ResponseSizeBytes:    len(payload),
		ResponseFingerprint:  fingerprint.Bytes(payload),
		ElapsedMillis:        elapsedMillis(in.Start, in.End),
		OperationName:        optional(in.OperationName),
		VariablesFingerprint: fingerprint.Bytes(vars),
		StatusCode:           DefaultStatusCode,
	}

	if in.Result.HasErrors() {
		rec.Errors = make([]graphql.Error, len(in.Result.Errors))
		for i, e := range in.Result.Errors {
			rec.Errors[i] = e.Clone()
		}
	}

	if req := in.Request; req != nil {
		if m := req.Method(); m != "" {
			rec.Method = m
		}
		rec.ClientIP = clientIP(req)
		rec.GraphQLClientName = header(req, HeaderGraphQLClientName)
		rec.GraphQLClientVersion = header(req, HeaderGraphQLClientVersion)
		rec.UserAgent = header(req, HeaderUserAgent)
		rec.Referer = header(req, HeaderReferer)
	}

	if resp := in.Response; resp != nil {
		if code := resp.StatusCode(); code != 0 {
			rec.StatusCode = code
		}
		_, ok := resp.Lookup(HeaderSetCookie)
		rec.HasSetCookie = &ok
	}

	return rec, nil
}

// elapsedMillis rounds to the nearest millisecond, ties to even.
func elapsedMillis(start, end time.Time) int64 {
	d := end.Sub(start)
	neg := d < 0
	if neg {
		d = -d
	}
	ms, rem := int64(d/time.Millisecond), d%time.Millisecond
	if twice := 2 * rem; twice > time.Millisecond || (twice == time.Millisecond && ms%2 == 1) {
		ms++
	}
	if neg {
		return -ms
	}
	return ms
}

func clientIP(req RequestInfo) *string {
	if fwd, ok := req.Lookup(HeaderForwardedFor); ok && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return &first
		}
	}
	for _, name := range []string{HeaderTrueClientIP, HeaderRealIP} {
		if v, ok := req.Lookup(name); ok && v != "" {
			return &v
		}
	}
	return nil
}

func header(req RequestInfo, name string) *string {
	v, ok := req.Lookup(name)
	if !ok {
		return nil
	}
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
