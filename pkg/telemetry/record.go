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
	"github.com/stellate/stellate-go/pkg/graphql"
)

// DefaultMethod is reported when the transport method is unknown.
const DefaultMethod = "POST"

// DefaultStatusCode is reported when no response status is available.
const DefaultStatusCode = 200

// Record is the summary of one execution sent to the collector.
// Optional fields are nil when absent and omitted from the JSON body.
type Record struct {
	Operation            string          `json:"operation"`
	Method               string          `json:"method"`
	ResponseSizeBytes    int             `json:"responseSizeBytes"`
	ResponseFingerprint  uint32          `json:"responseFingerprint"`
	ElapsedMillis        int64           `json:"elapsedMillis"`
	OperationName        *string         `json:"operationName,omitempty"`
	VariablesFingerprint uint32          `json:"variablesFingerprint"`
	ClientIP             *string         `json:"clientIp,omitempty"`
	GraphQLClientName    *string         `json:"graphqlClientName,omitempty"`
	GraphQLClientVersion *string         `json:"graphqlClientVersion,omitempty"`
	Errors               []graphql.Error `json:"errors,omitempty"`
	StatusCode           int             `json:"statusCode"`
	UserAgent            *string         `json:"userAgent,omitempty"`
	Referer              *string         `json:"referer,omitempty"`
	HasSetCookie         *bool           `json:"hasSetCookie,omitempty"`
}
