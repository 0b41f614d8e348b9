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

// Package telemetry turns one completed GraphQL execution into a flat,
// self-contained Record that can be queued and shipped to the collector.
//
// Build is a pure function: it performs no I/O and given the same Input
// returns a field-for-field identical Record. Transport metadata is read through
// two narrow capability interfaces, RequestInfo and ResponseInfo, so any host
// (net/http, a framework adapter, a test fake) can supply it. Either may be nil;
// missing context produces defaults, never an error.
//
// Record fields and their sources:
//
//	operation             raw query text
//	method                request method, "POST" when unknown
//	responseSizeBytes     byte length of the serialized result payload
//	responseFingerprint   fingerprint of the serialized result payload
//	elapsedMillis         execution wall time, rounded to milliseconds
//	operationName         operation name if provided
//	variablesFingerprint  fingerprint of the serialized variables ("{}" if none)
//	clientIp              x-forwarded-for[0], true-client-ip, then x-real-ip
//	graphqlClientName     x-graphql-client-name header
//	graphqlClientVersion  x-graphql-client-version header
//	errors                execution errors, only when there are any
//	statusCode            response status, 200 when unknown
//	userAgent, referer    request headers
//	hasSetCookie          whether the response sets a cookie, absent without a response
package telemetry
