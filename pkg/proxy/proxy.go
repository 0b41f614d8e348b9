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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stellate/stellate-go/pkg/defaults"
	"github.com/stellate/stellate-go/pkg/graphql"
	"github.com/stellate/stellate-go/pkg/telemetry"
)

// Observer receives one telemetry input per forwarded operation.
type Observer interface {
	Observe(in telemetry.Input)
}

// Hop-by-hop headers are not forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Option configures a Handler.
type Option func(*Handler)

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout bounds each upstream call.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithMaxRequestBytes caps inbound request bodies.
func WithMaxRequestBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxRequest = n
		}
	}
}

// WithClock overrides the time source used to time upstream calls.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// Handler forwards GraphQL operations to a single upstream.
type Handler struct {
	upstream    *url.URL
	observer    Observer
	client      *http.Client
	timeout     time.Duration
	maxRequest  int64
	maxResponse int64
	now         func() time.Time
}

// New creates a Handler forwarding to upstream. observer may be nil.
func New(upstream string, observer Observer, opts ...Option) (*Handler, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", upstream, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream url %q: unsupported scheme", upstream)
	}

	h := &Handler{
		upstream:    u,
		observer:    observer,
		client:      &http.Client{},
		timeout:     defaults.UpstreamTimeout,
		maxRequest:  defaults.MaxRequestBodyBytes,
		maxResponse: defaults.MaxResponseBodyBytes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		op   *graphql.Request
		body []byte
		err  error
	)

	switch r.Method {
	case http.MethodGet:
		op, err = graphql.ParseQuery(r.URL.Query())
	case http.MethodPost:
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxRequest))
		if err == nil {
			op, err = graphql.ParseBody(body)
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeResult(w, http.StatusMethodNotAllowed, graphql.ErrorResult("method not allowed"))
		return
	}
	if err != nil {
		writeResult(w, http.StatusBadRequest, graphql.ErrorResult(err.Error()))
		return
	}
	if strings.TrimSpace(op.Query) == "" {
		writeResult(w, http.StatusBadRequest, graphql.ErrorResult("missing query"))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	outReq, err := h.upstreamRequest(ctx, r, body)
	if err != nil {
		writeResult(w, http.StatusInternalServerError, graphql.ErrorResult("failed to build upstream request"))
		slog.Error("failed to build upstream request", "error", err)
		return
	}

	start := h.now()
	resp, err := h.client.Do(outReq)
	if err != nil {
		end := h.now()
		slog.Warn("upstream request failed", "upstream", h.upstream.Redacted(), "error", err)
		result := graphql.ErrorResult("upstream request failed")
		writeResult(w, http.StatusBadGateway, result)
		h.observe(r, op, result, start, end, telemetry.NewResponse(http.StatusBadGateway, w.Header()))
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, h.maxResponse+1))
	end := h.now()
	if err != nil {
		slog.Warn("failed to read upstream response", "error", err)
		writeResult(w, http.StatusBadGateway, graphql.ErrorResult("failed to read upstream response"))
		return
	}
	oversized := int64(len(respBody)) > h.maxResponse

	header := w.Header()
	for k, vv := range resp.Header {
		header[k] = append([]string(nil), vv...)
	}
	removeHopHeaders(header)
	header.Del("Content-Length")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(respBody); err != nil {
		slog.Debug("failed to write proxied response", "error", err)
		return
	}

	// Bodies over the limit are streamed through untouched but not recorded.
	if oversized {
		if _, err := io.Copy(w, resp.Body); err != nil {
			slog.Debug("failed to stream proxied response", "error", err)
		}
		slog.Debug("upstream response exceeds telemetry limit, skipping telemetry",
			"limit", h.maxResponse)
		return
	}

	result, err := graphql.DecodeResult(respBody)
	if err != nil {
		slog.Debug("upstream response is not a graphql result, skipping telemetry",
			"status", resp.StatusCode, "error", err)
		return
	}
	h.observe(r, op, result, start, end, telemetry.NewResponse(resp.StatusCode, resp.Header))
}

func (h *Handler) upstreamRequest(ctx context.Context, r *http.Request, body []byte) (*http.Request, error) {
	target := *h.upstream
	if r.Method == http.MethodGet {
		target.RawQuery = r.URL.RawQuery
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	out, err := http.NewRequestWithContext(ctx, r.Method, target.String(), rd)
	if err != nil {
		return nil, err
	}

	out.Header = r.Header.Clone()
	removeHopHeaders(out.Header)
	out.Header.Del("Accept-Encoding")
	out.Header.Del("Content-Length")
	if clientIP, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := out.Header.Values("X-Forwarded-For"); len(prior) > 0 {
			clientIP = strings.Join(prior, ", ") + ", " + clientIP
		}
		out.Header.Set("X-Forwarded-For", clientIP)
	}
	return out, nil
}

func (h *Handler) observe(r *http.Request, op *graphql.Request, result *graphql.Result,
	start, end time.Time, resp telemetry.ResponseInfo) {
	if h.observer == nil {
		return
	}
	h.observer.Observe(telemetry.Input{
		Query:         op.Query,
		OperationName: op.OperationName,
		Variables:     op.Variables,
		Result:        result,
		Start:         start,
		End:           end,
		Request:       telemetry.FromHTTPRequest(r),
		Response:      resp,
	})
}

func removeHopHeaders(h http.Header) {
	for _, f := range h.Values("Connection") {
		for _, name := range strings.Split(f, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

func writeResult(w http.ResponseWriter, status int, result *graphql.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Debug("failed to write graphql error", "error", err)
	}
}
