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

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func newTestServer() *Server {
	return &Server{
		config:      NewConfig(),
		rateLimiter: rate.NewLimiter(100, 200),
	}
}

func TestRequestIDMiddleware_GeneratesNewID(t *testing.T) {
	s := newTestServer()

	var capturedRequestID, forwardedID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestID(r.Context())
		forwardedID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(capturedRequestID); err != nil {
		t.Errorf("expected valid UUID, got: %s", capturedRequestID)
	}
	if rec.Header().Get(RequestIDHeader) != capturedRequestID {
		t.Errorf("expected X-Request-Id header to be %s, got %s",
			capturedRequestID, rec.Header().Get(RequestIDHeader))
	}
	if forwardedID != capturedRequestID {
		t.Errorf("expected request header to carry %s, got %s", capturedRequestID, forwardedID)
	}
}

func TestRequestIDMiddleware_UsesProvidedID(t *testing.T) {
	s := newTestServer()

	providedID := uuid.New().String()
	var capturedRequestID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, providedID)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if capturedRequestID != providedID {
		t.Errorf("expected request ID %s, got %s", providedID, capturedRequestID)
	}
}

func TestRequestIDMiddleware_ReplacesInvalidID(t *testing.T) {
	s := newTestServer()

	var capturedRequestID string
	handler := s.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedRequestID = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if capturedRequestID == "not-a-uuid" {
		t.Error("expected invalid request ID to be replaced")
	}
	if _, err := uuid.Parse(capturedRequestID); err != nil {
		t.Errorf("expected valid UUID, got: %s", capturedRequestID)
	}
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newTestServer()

	handler := s.requestIDMiddleware(s.panicRecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected JSON error body, got %s", rec.Header().Get("Content-Type"))
	}
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	s := newTestServer()

	handler := s.rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Errorf("expected X-RateLimit-Limit 100, got %s", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestResponseWriter_IgnoresDuplicateWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError)
	_, _ = rw.Write([]byte("ok"))

	if rw.Status() != http.StatusAccepted {
		t.Errorf("expected recorded status 202, got %d", rw.Status())
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected written status 202, got %d", rec.Code)
	}
}
