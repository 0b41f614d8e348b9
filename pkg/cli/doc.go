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

// Package cli implements the stellate command-line interface.
//
// # Commands
//
// serve - Run the instrumented GraphQL proxy:
//
//	stellate serve --upstream http://localhost:4000/graphql --service my-app
//
// Forwards GraphQL requests to the upstream server, records one telemetry
// record per operation and ships records to https://{service}.stellate.sh/log
// in the background. On SIGINT/SIGTERM the server stops accepting requests and
// the delivery queue is drained for up to --drain-timeout.
//
// schema sync - Upload an introspection result:
//
//	stellate schema sync --file introspection.json
//
// Posts the schema to https://{service}.stellate.sh/schema using the schema
// token. Accepts either a bare {"__schema": ...} document or a full GraphQL
// response wrapping it in "data".
//
// fingerprint - Compute fingerprints:
//
//	stellate fingerprint "{ hello }"
//	stellate fingerprint --file response.json --format table
//
// Prints the 32-bit fingerprint used for responseFingerprint and
// variablesFingerprint, which helps when comparing collector data.
//
// # Global Flags
//
//	--config       Config file (YAML or JSON, local path or http(s) URL)
//	--env-file     Load environment variables from a dotenv file first
//	--service      Stellate service name
//	--logging-token, --schema-token  Collector tokens
//	--base-url     Override the collector base URL
//	--log-level    Logging verbosity (debug, info, warn, error)
//	--log-file     Write logs to a size-rotated file
//
// # Environment Variables
//
//	STELLATE_SERVICE_NAME, STELLATE_LOGGING_TOKEN, STELLATE_SCHEMA_TOKEN,
//	STELLATE_BASE_URL, STELLATE_UPSTREAM_URL, STELLATE_QUEUE_CAPACITY,
//	STELLATE_DROP_POLICY, PORT, LOG_LEVEL
//
// Precedence, highest first: flags, environment, config file, defaults.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
package cli
