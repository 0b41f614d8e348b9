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

package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stellate/stellate-go/pkg/defaults"
)

// maxRemoteBytes caps documents fetched over HTTP.
const maxRemoteBytes = 64 << 20

// FormatFromPath determines the serialization format based on file extension.
// Supported extensions:
//   - .json → FormatJSON
//   - .yaml, .yml → FormatYAML
//   - .table, .txt → FormatTable
//
// Returns FormatJSON as default for unknown extensions.
// Extension matching is case-insensitive.
func FormatFromPath(filePath string) Format {
	lowerPath := strings.ToLower(filePath)
	if i := strings.IndexAny(lowerPath, "?#"); i >= 0 && isRemote(lowerPath) {
		lowerPath = lowerPath[:i]
	}
	switch {
	case strings.HasSuffix(lowerPath, ".json"):
		return FormatJSON
	case strings.HasSuffix(lowerPath, ".yaml"), strings.HasSuffix(lowerPath, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lowerPath, ".table"), strings.HasSuffix(lowerPath, ".txt"):
		return FormatTable
	default:
		slog.Warn("unknown file extension, defaulting to JSON", "filePath", filePath)
		return FormatJSON
	}
}

// Reader handles deserialization of JSON or YAML from any io.Reader.
// Close must be called when the Reader was created by NewFileReader.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader creates a Reader over input. If input implements io.Closer it is
// closed by Reader.Close.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if err := checkReadable(format); err != nil {
		return nil, err
	}

	r := &Reader{
		format: format,
		input:  input,
	}
	if closer, ok := input.(io.Closer); ok {
		r.closer = closer
	}
	return r, nil
}

// NewFileReader creates a Reader for a local file or an http(s) URL.
func NewFileReader(ctx context.Context, format Format, path string) (*Reader, error) {
	if err := checkReadable(format); err != nil {
		return nil, err
	}

	if isRemote(path) {
		body, err := fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to download remote file: %w", err)
		}
		return &Reader{format: format, input: body, closer: body}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &Reader{format: format, input: file, closer: file}, nil
}

func checkReadable(format Format) error {
	if format.IsUnknown() {
		return fmt.Errorf("unknown format: %s", format)
	}
	if format == FormatTable {
		return fmt.Errorf("table format does not support deserialization")
	}
	return nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}

	client := &http.Client{Timeout: defaults.HTTPClientTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed for url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch data: status %s", resp.Status)
	}
	return limitedBody{Reader: io.LimitReader(resp.Body, maxRemoteBytes), Closer: resp.Body}, nil
}

// Deserialize decodes the input into v, which must be a pointer.
func (r *Reader) Deserialize(v any) error {
	if r == nil {
		return fmt.Errorf("reader is nil")
	}
	if r.input == nil {
		return fmt.Errorf("input source is nil")
	}

	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", r.format)
	}
}

// Close releases the underlying file or response body. It is idempotent and
// safe on a nil Reader.
func (r *Reader) Close() error {
	if r == nil {
		return nil
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil // Prevent double-close
		return err
	}
	return nil
}

// FromFile loads and deserializes a local file or http(s) URL into a new T,
// detecting the format from the extension.
//
// Example:
//
//	cfg, err := FromFile[config.Config]("stellate.yaml")
func FromFile[T any](path string) (*T, error) {
	return FromFileWithContext[T](context.Background(), path)
}

// FromFileWithContext is FromFile bound to ctx for remote reads.
func FromFileWithContext[T any](ctx context.Context, path string) (*T, error) {
	fileFormat := FormatFromPath(path)
	slog.Debug("determined file format",
		slog.String("path", path),
		slog.String("format", string(fileFormat)),
	)

	ser, err := NewFileReader(ctx, fileFormat, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create serializer for %q: %w", path, err)
	}
	defer func() {
		if closeErr := ser.Close(); closeErr != nil {
			slog.Warn("failed to close serializer", "error", closeErr)
		}
	}()

	var r T
	if err := ser.Deserialize(&r); err != nil {
		return nil, fmt.Errorf("failed to deserialize object from %q: %w", path, err)
	}

	slog.Debug("successfully loaded object from file",
		slog.String("path", path),
	)
	return &r, nil
}
