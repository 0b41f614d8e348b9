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

package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/stellate/stellate-go/pkg/defaults"
	"github.com/stellate/stellate-go/pkg/errors"
	"github.com/stellate/stellate-go/pkg/telemetry"
)

// Collector paths and headers.
const (
	LogPath    = "/log"
	SchemaPath = "/schema"

	HeaderLoggingToken = "stellate-logging-token"
	HeaderSchemaToken  = "stellate-schema-token"

	DefaultUserAgent = "stellate-go/1.0"
)

// maxErrorBody bounds how much of a rejected response is read.
const maxErrorBody = 4 << 10

var (
	ClientDefaultTimeout               = defaults.HTTPClientTimeout
	ClientDefaultKeepAlive             = defaults.HTTPKeepAlive
	ClientDefaultConnectTimeout        = defaults.HTTPConnectTimeout
	ClientDefaultTLSHandshakeTimeout   = defaults.HTTPTLSHandshakeTimeout
	ClientDefaultResponseHeaderTimeout = defaults.HTTPResponseHeaderTimeout
	ClientDefaultIdleConnTimeout       = defaults.HTTPIdleConnTimeout
	ClientDefaultMaxIdleConns          = 10
	ClientDefaultMaxIdleConnsPerHost   = 4
)

// DefaultBaseURL returns the collector base URL of a service.
func DefaultBaseURL(service string) string {
	return fmt.Sprintf("https://%s.stellate.sh", service)
}

// ClientOption defines a configuration option for Client.
type ClientOption func(*Client)

// Client posts telemetry records and schemas to the collector.
type Client struct {
	ServiceName  string
	BaseURL      string
	LoggingToken string
	SchemaToken  string
	UserAgent    string
	Compress     bool
	HTTPClient   *http.Client
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithLoggingToken(token string) ClientOption {
	return func(c *Client) {
		c.LoggingToken = token
	}
}

func WithSchemaToken(token string) ClientOption {
	return func(c *Client) {
		c.SchemaToken = token
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.UserAgent = userAgent
	}
}

// WithCompression gzips request bodies and sets Content-Encoding accordingly.
func WithCompression(enabled bool) ClientOption {
	return func(c *Client) {
		c.Compress = enabled
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

func WithTotalTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if c.HTTPClient != nil && timeout > 0 {
			c.HTTPClient.Timeout = timeout
		}
	}
}

// NewClient creates a Client for service with the specified options.
func NewClient(service string, options ...ClientOption) *Client {
	c := &Client{
		ServiceName: service,
		BaseURL:     DefaultBaseURL(service),
		UserAgent:   DefaultUserAgent,
		HTTPClient: &http.Client{
			Timeout:   ClientDefaultTimeout,
			Transport: newDefaultTransport(),
		},
	}

	for _, opt := range options {
		opt(c)
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: ClientDefaultTimeout, Transport: newDefaultTransport()}
	}
	return c
}

func newDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Connection pooling
		MaxIdleConns:        ClientDefaultMaxIdleConns,
		MaxIdleConnsPerHost: ClientDefaultMaxIdleConnsPerHost,

		// Timeouts
		DialContext: (&net.Dialer{
			Timeout:   ClientDefaultConnectTimeout,
			KeepAlive: ClientDefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   ClientDefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: ClientDefaultResponseHeaderTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,
		IdleConnTimeout:       ClientDefaultIdleConnTimeout,
		ForceAttemptHTTP2:     true,

		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// SendRecord posts one telemetry record to the log endpoint.
func (c *Client) SendRecord(ctx context.Context, rec *telemetry.Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "record is nil")
	}
	return c.post(ctx, LogPath, HeaderLoggingToken, c.LoggingToken, rec)
}

// SyncSchema posts an introspection result to the schema endpoint, wrapped as
// {"schema": schema}. Pass json.RawMessage to forward pre-serialized JSON.
func (c *Client) SyncSchema(ctx context.Context, schema any) error {
	if schema == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "schema is nil")
	}
	body := struct {
		Schema any `json:"schema"`
	}{Schema: schema}
	return c.post(ctx, SchemaPath, HeaderSchemaToken, c.SchemaToken, body)
}

func (c *Client) post(ctx context.Context, path, tokenHeader, token string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to encode request body", err)
	}

	encoding := ""
	if c.Compress {
		if payload, err = gzipBytes(payload); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to compress request body", err)
		}
		encoding = "gzip"
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to create request for url %s", url), err)
	}
	req.Header.Set(tokenHeader, token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		code := errors.ErrCodeUnavailable
		if ctx.Err() != nil {
			code = errors.ErrCodeTimeout
		}
		return errors.Wrap(code, fmt.Sprintf("request to %s failed", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	preview := Preview(string(raw), defaults.ErrorPreviewLength)

	code := errors.ErrCodeDeliveryFailed
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		code = errors.ErrCodeUnauthorized
	}
	return errors.NewWithContext(code, preview, map[string]any{
		"status": resp.StatusCode,
		"url":    url,
	})
}

// Preview returns the first n characters of s.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
