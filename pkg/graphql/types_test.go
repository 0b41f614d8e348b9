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

package graphql

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResult(t *testing.T) {
	body := []byte(`{"data":{"fails":null},"errors":[{"message":"This is an error","locations":[{"line":1,"column":3}],"path":["fails"]}]}`)

	res, err := DecodeResult(body)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "This is an error", res.Errors[0].Message)
	assert.Equal(t, []Location{{Line: 1, Column: 3}}, res.Errors[0].Locations)
	assert.Equal(t, []any{"fails"}, res.Errors[0].Path)
	assert.Nil(t, res.Extensions)
	assert.True(t, res.HasErrors())
}

func TestDecodeResult_PreservesNumbers(t *testing.T) {
	res, err := DecodeResult([]byte(`{"data":{"big":12345678901234567890}}`))
	require.NoError(t, err)

	out, err := json.Marshal(res.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"big":12345678901234567890}`, string(out))
}

func TestDecodeResult_Invalid(t *testing.T) {
	_, err := DecodeResult([]byte("<html>"))
	assert.Error(t, err)
}

func TestParseBody(t *testing.T) {
	req, err := ParseBody([]byte(`{"query":"query Q($id: ID) { user(id: $id) { name } }","operationName":"Q","variables":{"id":"1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Q", req.OperationName)
	assert.Equal(t, map[string]any{"id": "1"}, req.Variables)
}

func TestParseQuery(t *testing.T) {
	values := url.Values{}
	values.Set("query", "{ hello }")
	values.Set("variables", `{"a":1}`)

	req, err := ParseQuery(values)
	require.NoError(t, err)
	assert.Equal(t, "{ hello }", req.Query)
	assert.Empty(t, req.OperationName)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, req.Variables)

	values.Set("variables", "{")
	_, err = ParseQuery(values)
	assert.Error(t, err)
}

func TestParseQuery_MatchesParseBodyVariables(t *testing.T) {
	const variables = `{"big":12345678901234567890,"ratio":1.0}`

	values := url.Values{}
	values.Set("query", "{ hello }")
	values.Set("variables", variables)
	fromQuery, err := ParseQuery(values)
	require.NoError(t, err)

	fromBody, err := ParseBody([]byte(`{"query":"{ hello }","variables":` + variables + `}`))
	require.NoError(t, err)

	queryJSON, err := json.Marshal(fromQuery.Variables)
	require.NoError(t, err)
	bodyJSON, err := json.Marshal(fromBody.Variables)
	require.NoError(t, err)

	assert.Equal(t, string(bodyJSON), string(queryJSON))
	assert.Equal(t, `{"big":12345678901234567890,"ratio":1.0}`, string(queryJSON))
}

func TestError_Error(t *testing.T) {
	e := &Error{Message: "boom"}
	assert.Equal(t, "boom", e.Error())

	e.Path = []any{"user", 0, "name"}
	assert.Equal(t, "boom (path: user.0.name)", e.Error())
}

func TestError_Clone(t *testing.T) {
	orig := Error{
		Message:    "boom",
		Locations:  []Location{{Line: 1, Column: 2}},
		Path:       []any{"a"},
		Extensions: map[string]any{"code": "X"},
	}
	c := orig.Clone()
	c.Locations[0].Line = 9
	c.Path[0] = "b"
	c.Extensions["code"] = "Y"

	assert.Equal(t, 1, orig.Locations[0].Line)
	assert.Equal(t, "a", orig.Path[0])
	assert.Equal(t, "X", orig.Extensions["code"])
}

func TestErrorResult(t *testing.T) {
	res := ErrorResult("upstream unavailable")
	assert.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "upstream unavailable", res.Errors[0].Message)

	var nilResult *Result
	assert.False(t, nilResult.HasErrors())
}
