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
	"net/http"
	"net/textproto"
)

// Header names read from the transport.
const (
	HeaderForwardedFor         = "x-forwarded-for"
	HeaderTrueClientIP         = "true-client-ip"
	HeaderRealIP               = "x-real-ip"
	HeaderGraphQLClientName    = "x-graphql-client-name"
	HeaderGraphQLClientVersion = "x-graphql-client-version"
	HeaderUserAgent            = "user-agent"
	HeaderReferer              = "referer"
	HeaderSetCookie            = "set-cookie"
)

// RequestInfo is the read-only view of an inbound request.
// Lookup is case-insensitive and reports whether the header was present.
type RequestInfo interface {
	Lookup(name string) (string, bool)
	Method() string
}

// ResponseInfo is the read-only view of an outbound response.
// A zero StatusCode means the status has not been set.
type ResponseInfo interface {
	Lookup(name string) (string, bool)
	StatusCode() int
}

func lookup(h http.Header, name string) (string, bool) {
	if h == nil {
		return "", false
	}
	values, ok := h[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok {
		return "", false
	}
	if len(values) == 0 {
		return "", true
	}
	return values[0], true
}

type httpRequest struct {
	method string
	header http.Header
}

func (r *httpRequest) Lookup(name string) (string, bool) { return lookup(r.header, name) }
func (r *httpRequest) Method() string                    { return r.method }

// FromHTTPRequest captures the method and a copy of the headers of r.
// A nil request yields nil so the builder applies its defaults.
func FromHTTPRequest(r *http.Request) RequestInfo {
	if r == nil {
		return nil
	}
	return &httpRequest{method: r.Method, header: r.Header.Clone()}
}

// NewRequest builds a RequestInfo from a method and headers.
func NewRequest(method string, header http.Header) RequestInfo {
	return &httpRequest{method: method, header: header}
}

type httpResponse struct {
	status int
	header http.Header
}

func (r *httpResponse) Lookup(name string) (string, bool) { return lookup(r.header, name) }
func (r *httpResponse) StatusCode() int                   { return r.status }

// NewResponse builds a ResponseInfo from a status code and headers.
func NewResponse(status int, header http.Header) ResponseInfo {
	return &httpResponse{status: status, header: header}
}
