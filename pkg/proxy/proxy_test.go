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

package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellate/stellate-go/pkg/telemetry"
)

type recorder struct {
	mu     sync.Mutex
	inputs []telemetry.Input
}

func (r *recorder) Observe(in telemetry.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
}

func (r *recorder) all() []telemetry.Input {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]telemetry.Input(nil), r.inputs...)
}

type upstreamCall struct {
	method string
	query  url.Values
	header http.Header
	body   string
}

func newUpstream(t *testing.T, status int, body string) (*httptest.Server, func() []upstreamCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []upstreamCall

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, upstreamCall{method: r.Method, query: r.URL.Query(), header: r.Header.Clone(), body: string(raw)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Set-Cookie", "session=abc")
		w.Header().Set("Connection", "close")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []upstreamCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]upstreamCall(nil), calls...)
	}
}

func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

func TestHandler_PostForwardsAndObserves(t *testing.T) {
	const upstreamBody = `{"data":{"hello":"world"}}`
	upstream, calls := newUpstream(t, http.StatusOK, upstreamBody)
	obs := &recorder{}

	h, err := New(upstream.URL, obs, WithClock(steppingClock(7*time.Millisecond)))
	require.NoError(t, err)

	reqBody := `{"query":"query Hello { hello }","operationName":"Hello","variables":{"id":42}}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("X-GraphQL-Client-Name", "web")
	req.RemoteAddr = "10.0.0.7:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstreamBody, rec.Body.String())
	assert.Equal(t, "session=abc", rec.Header().Get("Set-Cookie"))
	assert.Empty(t, rec.Header().Get("Connection"))

	c := calls()
	require.Len(t, c, 1)
	assert.Equal(t, http.MethodPost, c[0].method)
	assert.Equal(t, reqBody, c[0].body)
	assert.Equal(t, "web", c[0].header.Get("X-GraphQL-Client-Name"))
	assert.Equal(t, "203.0.113.9, 10.0.0.7", c[0].header.Get("X-Forwarded-For"))

	inputs := obs.all()
	require.Len(t, inputs, 1)
	in := inputs[0]
	assert.Equal(t, "query Hello { hello }", in.Query)
	assert.Equal(t, "Hello", in.OperationName)
	assert.Equal(t, json.Number("42"), in.Variables["id"])
	assert.Equal(t, 7*time.Millisecond, in.End.Sub(in.Start))
	assert.Equal(t, map[string]any{"hello": "world"}, in.Result.Data)

	r, err := telemetry.Build(in)
	require.NoError(t, err)
	assert.Equal(t, "POST", r.Method)
	assert.Equal(t, 200, r.StatusCode)
	require.NotNil(t, r.ClientIP)
	assert.Equal(t, "203.0.113.9", *r.ClientIP)
	require.NotNil(t, r.GraphQLClientName)
	assert.Equal(t, "web", *r.GraphQLClientName)
	require.NotNil(t, r.HasSetCookie)
	assert.True(t, *r.HasSetCookie)
	assert.Equal(t, 48, r.ResponseSizeBytes)
}

func TestHandler_GetForwardsQueryString(t *testing.T) {
	upstream, calls := newUpstream(t, http.StatusOK, `{"data":{"hello":"world"}}`)
	obs := &recorder{}

	h, err := New(upstream.URL, obs)
	require.NoError(t, err)

	params := url.Values{}
	params.Set("query", "{ hello }")
	params.Set("variables", `{"a":"b"}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+params.Encode(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	c := calls()
	require.Len(t, c, 1)
	assert.Equal(t, http.MethodGet, c[0].method)
	assert.Equal(t, "{ hello }", c[0].query.Get("query"))

	inputs := obs.all()
	require.Len(t, inputs, 1)
	assert.Equal(t, "{ hello }", inputs[0].Query)
	assert.Equal(t, map[string]any{"a": "b"}, inputs[0].Variables)
	assert.Equal(t, http.MethodGet, inputs[0].Request.Method())
}

func TestHandler_UpstreamErrorStatusIsObserved(t *testing.T) {
	upstream, _ := newUpstream(t, http.StatusInternalServerError,
		`{"errors":[{"message":"boom"}]}`)
	obs := &recorder{}

	h, err := New(upstream.URL, obs)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ fails }"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	inputs := obs.all()
	require.Len(t, inputs, 1)
	assert.True(t, inputs[0].Result.HasErrors())
	assert.Equal(t, http.StatusInternalServerError, inputs[0].Response.StatusCode())
}

func TestHandler_NonGraphQLResponseSkipsTelemetry(t *testing.T) {
	upstream, _ := newUpstream(t, http.StatusOK, "<html>nope</html>")
	obs := &recorder{}

	h, err := New(upstream.URL, obs)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "<html>nope</html>", rec.Body.String())
	assert.Empty(t, obs.all())
}

func TestHandler_OversizedResponsePassesThroughUnchanged(t *testing.T) {
	upstreamBody := `{"data":{"hello":"` + strings.Repeat("x", 100) + `"}}`
	upstream, _ := newUpstream(t, http.StatusOK, upstreamBody)
	obs := &recorder{}

	h, err := New(upstream.URL, obs)
	require.NoError(t, err)
	h.maxResponse = 32

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstreamBody, rec.Body.String())
	assert.Empty(t, obs.all())
}

func TestHandler_ResponseAtLimitIsObserved(t *testing.T) {
	const upstreamBody = `{"data":{"hello":"world"}}`
	upstream, _ := newUpstream(t, http.StatusOK, upstreamBody)
	obs := &recorder{}

	h, err := New(upstream.URL, obs)
	require.NoError(t, err)
	h.maxResponse = int64(len(upstreamBody))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, upstreamBody, rec.Body.String())
	assert.Len(t, obs.all(), 1)
}

func TestHandler_UpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	obs := &recorder{}
	h, err := New(addr, obs, WithTimeout(time.Second))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ hello }"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream request failed")

	inputs := obs.all()
	require.Len(t, inputs, 1)
	assert.Equal(t, http.StatusBadGateway, inputs[0].Response.StatusCode())
	assert.True(t, inputs[0].Result.HasErrors())
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	h, err := New("http://127.0.0.1:1", nil, WithMaxRequestBytes(64))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"method", http.MethodPut, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, `{"query":`, http.StatusBadRequest},
		{"missing query", http.MethodPost, `{"variables":{}}`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"query":"` + strings.Repeat("a", 100) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/graphql", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, "errors")
		})
	}
}

func TestNew_InvalidUpstream(t *testing.T) {
	_, err := New("ftp://example.com", nil)
	assert.Error(t, err)

	_, err = New("://bad", nil)
	assert.Error(t, err)
}
