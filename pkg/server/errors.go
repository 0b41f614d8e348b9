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
	"time"

	"github.com/google/uuid"

	"github.com/stellate/stellate-go/pkg/errors"
	"github.com/stellate/stellate-go/pkg/serializer"
)

// ErrCodeRateLimitExceeded is returned when the token bucket is empty.
const ErrCodeRateLimitExceeded errors.ErrorCode = "RATE_LIMIT_EXCEEDED"

// ErrorResponse is the JSON body of server-generated errors.
type ErrorResponse struct {
	Code      errors.ErrorCode `json:"code"`
	Message   string           `json:"message"`
	Details   map[string]any   `json:"details,omitempty"`
	RequestID string           `json:"requestId"`
	Timestamp time.Time        `json:"timestamp"`
	Retryable bool             `json:"retryable"`
}

// WriteError writes an ErrorResponse carrying the request's ID.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code errors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}
