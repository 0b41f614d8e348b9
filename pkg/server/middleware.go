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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stellate/stellate-go/pkg/errors"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// contextKeyRequestID is the context key for request ID
const contextKeyRequestID contextKey = "requestID"

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the ID assigned by the request ID middleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withMiddleware wraps handler in the full middleware chain.
func (s *Server) withMiddleware(route string, handler http.Handler) http.Handler {
	return s.metricsMiddleware(route,
		s.requestIDMiddleware(
			s.panicRecoveryMiddleware( // Recover first to prevent token waste on panics
				s.rateLimitMiddleware(
					s.loggingMiddleware(handler),
				),
			),
		),
	)
}

// requestIDMiddleware extracts or generates request IDs. The ID is set on the
// request headers as well so proxied upstream calls carry it.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		r = r.WithContext(ctx)
		r.Header.Set(RequestIDHeader, requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware implements rate limiting
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow() {
			rateLimitRejects.Inc()
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
				"Rate limit exceeded", true, map[string]any{
					"limit": s.config.RateLimit,
					"burst": s.config.RateLimitBurst,
				})
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", int(s.config.RateLimit)))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(s.rateLimiter.Tokens())))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(time.Second).Unix()))

		next.ServeHTTP(w, r)
	})
}

// panicRecoveryMiddleware recovers from panics
func (s *Server) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				panicRecoveries.Inc()
				slog.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"requestID", RequestID(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)
				WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal,
					"Internal server error", true, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := RequestID(r.Context())

		// Wrap response writer to track status code
		rw := newResponseWriter(w)

		slog.Debug("request started",
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		next.ServeHTTP(rw, r)

		slog.Debug("request completed",
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
