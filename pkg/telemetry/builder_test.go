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
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellate/stellate-go/pkg/graphql"
)

var t0 = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func helloResult() *graphql.Result {
	return &graphql.Result{Data: map[string]any{"hello": "world"}}
}

func failsResult() *graphql.Result {
	return &graphql.Result{
		Data: map[string]any{"fails": nil},
		Errors: []graphql.Error{{
			Message:   "This is an error",
			Locations: []graphql.Location{{Line: 1, Column: 3}},
			Path:      []any{"fails"},
		}},
	}
}

func TestBuild_HappyPathWithoutContext(t *testing.T) {
	rec, err := Build(Input{
		Query:  "{ hello }",
		Result: helloResult(),
		Start:  t0,
		End:    t0.Add(12 * time.Millisecond),
	})
	require.NoError(t, err)

	assert.Equal(t, "{ hello }", rec.Operation)
	assert.Equal(t, "POST", rec.Method)
	assert.Equal(t, 48, rec.ResponseSizeBytes)
	assert.Equal(t, uint32(3554527834), rec.ResponseFingerprint)
	assert.Equal(t, int64(12), rec.ElapsedMillis)
	assert.Nil(t, rec.OperationName)
	assert.Equal(t, uint32(3938), rec.VariablesFingerprint)
	assert.Nil(t, rec.ClientIP)
	assert.Nil(t, rec.GraphQLClientName)
	assert.Nil(t, rec.GraphQLClientVersion)
	assert.Nil(t, rec.Errors)
	assert.Equal(t, 200, rec.StatusCode)
	assert.Nil(t, rec.UserAgent)
	assert.Nil(t, rec.Referer)
	assert.Nil(t, rec.HasSetCookie)
}

func TestBuild_ExecutionError(t *testing.T) {
	rec, err := Build(Input{
		Query:  "{ fails }",
		Result: failsResult(),
		Start:  t0,
		End:    t0,
	})
	require.NoError(t, err)

	require.Len(t, rec.Errors, 1)
	assert.Equal(t, "This is an error", rec.Errors[0].Message)
	assert.Equal(t, []graphql.Location{{Line: 1, Column: 3}}, rec.Errors[0].Locations)
	assert.Equal(t, []any{"fails"}, rec.Errors[0].Path)

	// Size and fingerprint cover the error-bearing payload.
	assert.Equal(t, 332, rec.ResponseSizeBytes)
	assert.Equal(t, uint32(538632675), rec.ResponseFingerprint)
	assert.Equal(t, int64(0), rec.ElapsedMillis)
}

func TestBuild_Pure(t *testing.T) {
	in := Input{
		Query:         "query Q($id: ID) { user(id: $id) { name } }",
		OperationName: "Q",
		Variables:     map[string]any{"id": "1", "flags": []any{"a", "b"}, "nested": map[string]any{"z": 1, "a": 2}},
		Result:        failsResult(),
		Start:         t0,
		End:           t0.Add(1500 * time.Microsecond),
		Request: NewRequest(http.MethodGet, http.Header{
			"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"},
			"User-Agent":      {"curl/8.0"},
		}),
		Response: NewResponse(http.StatusOK, http.Header{}),
	}

	first, err := Build(in)
	require.NoError(t, err)
	second, err := Build(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_RecordIsSelfContained(t *testing.T) {
	res := failsResult()
	rec, err := Build(Input{Query: "{ fails }", Result: res})
	require.NoError(t, err)

	res.Errors[0].Message = "mutated"
	res.Errors[0].Path[0] = "other"

	assert.Equal(t, "This is an error", rec.Errors[0].Message)
	assert.Equal(t, "fails", rec.Errors[0].Path[0])
}

func TestBuild_ElapsedRounding(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected int64
	}{
		{"zero", 0, 0},
		{"below half", 1499 * time.Microsecond, 1},
		{"half to even rounds up", 1500 * time.Microsecond, 2},
		{"half to even rounds down", 12500 * time.Microsecond, 12},
		{"half to even at zero", 500 * time.Microsecond, 0},
		{"above half", 12501 * time.Microsecond, 13},
		{"seconds", 2*time.Second + 250*time.Microsecond, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Build(Input{Start: t0, End: t0.Add(tt.elapsed)})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec.ElapsedMillis)
		})
	}
}

func TestBuild_RequestHeaders(t *testing.T) {
	req := NewRequest(http.MethodGet, http.Header{
		"X-Graphql-Client-Name":    {"web"},
		"X-Graphql-Client-Version": {"1.4.0"},
		"User-Agent":               {"Mozilla/5.0"},
		"Referer":                  {"https://example.com/"},
	})

	rec, err := Build(Input{Query: "{ a }", Request: req})
	require.NoError(t, err)

	assert.Equal(t, "GET", rec.Method)
	require.NotNil(t, rec.GraphQLClientName)
	assert.Equal(t, "web", *rec.GraphQLClientName)
	require.NotNil(t, rec.GraphQLClientVersion)
	assert.Equal(t, "1.4.0", *rec.GraphQLClientVersion)
	require.NotNil(t, rec.UserAgent)
	assert.Equal(t, "Mozilla/5.0", *rec.UserAgent)
	require.NotNil(t, rec.Referer)
	assert.Equal(t, "https://example.com/", *rec.Referer)
	assert.Nil(t, rec.ClientIP)
	assert.Nil(t, rec.HasSetCookie, "no response context")
}

func TestBuild_EmptyMethodDefaultsToPost(t *testing.T) {
	rec, err := Build(Input{Request: NewRequest("", nil)})
	require.NoError(t, err)
	assert.Equal(t, "POST", rec.Method)
}

func TestBuild_ClientIP(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		expected *string
	}{
		{
			name:     "forwarded for first entry",
			header:   http.Header{"X-Forwarded-For": {"203.0.113.7, 10.0.0.1"}, "X-Real-Ip": {"10.0.0.2"}},
			expected: ptr("203.0.113.7"),
		},
		{
			name:     "true client ip when forwarded empty",
			header:   http.Header{"X-Forwarded-For": {""}, "True-Client-Ip": {"198.51.100.1"}, "X-Real-Ip": {"10.0.0.2"}},
			expected: ptr("198.51.100.1"),
		},
		{
			name:     "real ip last",
			header:   http.Header{"X-Real-Ip": {"10.0.0.2"}},
			expected: ptr("10.0.0.2"),
		},
		{
			name:     "empty fallbacks are skipped",
			header:   http.Header{"True-Client-Ip": {""}, "X-Real-Ip": {"10.0.0.3"}},
			expected: ptr("10.0.0.3"),
		},
		{
			name:     "leading comma falls through",
			header:   http.Header{"X-Forwarded-For": {", 10.0.0.1"}, "X-Real-Ip": {"10.0.0.4"}},
			expected: ptr("10.0.0.4"),
		},
		{
			name:     "none",
			header:   http.Header{},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Build(Input{Request: NewRequest(http.MethodPost, tt.header)})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec.ClientIP)
		})
	}
}

func TestBuild_Response(t *testing.T) {
	t.Run("status and set-cookie", func(t *testing.T) {
		rec, err := Build(Input{Response: NewResponse(http.StatusCreated, http.Header{"Set-Cookie": {"a=b"}})})
		require.NoError(t, err)
		assert.Equal(t, 201, rec.StatusCode)
		require.NotNil(t, rec.HasSetCookie)
		assert.True(t, *rec.HasSetCookie)
	})

	t.Run("unset status defaults", func(t *testing.T) {
		rec, err := Build(Input{Response: NewResponse(0, nil)})
		require.NoError(t, err)
		assert.Equal(t, 200, rec.StatusCode)
		require.NotNil(t, rec.HasSetCookie)
		assert.False(t, *rec.HasSetCookie)
	})
}

func TestBuild_OperationName(t *testing.T) {
	rec, err := Build(Input{Query: "query Q { a }", OperationName: "Q"})
	require.NoError(t, err)
	require.NotNil(t, rec.OperationName)
	assert.Equal(t, "Q", *rec.OperationName)
}

func TestBuild_UnserializableResult(t *testing.T) {
	_, err := Build(Input{Result: &graphql.Result{Data: map[string]any{"n": math.NaN()}}})
	assert.Error(t, err)

	_, err = Build(Input{Variables: map[string]any{"ch": make(chan int)}})
	assert.Error(t, err)
}

func TestRecord_JSONOmitsAbsentFields(t *testing.T) {
	rec, err := Build(Input{Query: "{ hello }", Result: helloResult()})
	require.NoError(t, err)

	body, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(body, &fields))

	for _, key := range []string{"operation", "method", "responseSizeBytes", "responseFingerprint",
		"elapsedMillis", "variablesFingerprint", "statusCode"} {
		assert.Contains(t, fields, key)
	}
	for _, key := range []string{"operationName", "clientIp", "graphqlClientName", "graphqlClientVersion",
		"errors", "userAgent", "referer", "hasSetCookie"} {
		assert.NotContains(t, fields, key)
	}
}

func TestRecord_JSONKeepsFalseSetCookie(t *testing.T) {
	rec, err := Build(Input{Response: NewResponse(200, http.Header{})})
	require.NoError(t, err)

	body, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"hasSetCookie":false`)
}

func ptr(s string) *string { return &s }
