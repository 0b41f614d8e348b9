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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Service string `json:"service" yaml:"service"`
	Port    int    `json:"port" yaml:"port"`
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.json", FormatJSON},
		{"CONFIG.YAML", FormatYAML},
		{"stellate.yml", FormatYAML},
		{"out.table", FormatTable},
		{"notes.txt", FormatTable},
		{"unknown.bin", FormatJSON},
		{"https://example.com/schema.yaml?rev=2", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewReader_RejectsTable(t *testing.T) {
	if _, err := NewReader(FormatTable, strings.NewReader("")); err == nil {
		t.Error("expected error for table format")
	}
	if _, err := NewReader(Format("xml"), strings.NewReader("")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestReader_Deserialize(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		r, err := NewReader(FormatJSON, strings.NewReader(`{"service":"my-app","port":9000}`))
		if err != nil {
			t.Fatalf("NewReader failed: %v", err)
		}
		var s sample
		if err := r.Deserialize(&s); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if s.Service != "my-app" || s.Port != 9000 {
			t.Errorf("unexpected value: %+v", s)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		r, err := NewReader(FormatYAML, strings.NewReader("service: my-app\nport: 9000\n"))
		if err != nil {
			t.Fatalf("NewReader failed: %v", err)
		}
		var s sample
		if err := r.Deserialize(&s); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if s.Service != "my-app" || s.Port != 9000 {
			t.Errorf("unexpected value: %+v", s)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		r, err := NewReader(FormatJSON, strings.NewReader(`{"service":`))
		if err != nil {
			t.Fatalf("NewReader failed: %v", err)
		}
		var s sample
		if err := r.Deserialize(&s); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("nil reader", func(t *testing.T) {
		var r *Reader
		if err := r.Deserialize(&sample{}); err == nil {
			t.Error("expected error for nil reader")
		}
		if err := r.Close(); err != nil {
			t.Errorf("Close on nil reader: %v", err)
		}
	})
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stellate.yaml")
	if err := os.WriteFile(path, []byte("service: my-app\nport: 8081\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := FromFile[sample](path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if s.Service != "my-app" || s.Port != 8081 {
		t.Errorf("unexpected value: %+v", s)
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile[sample](filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromFileWithContext_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"service":"remote","port":1}`))
	}))
	defer srv.Close()

	s, err := FromFileWithContext[sample](context.Background(), srv.URL+"/config.json")
	if err != nil {
		t.Fatalf("FromFileWithContext failed: %v", err)
	}
	if s.Service != "remote" {
		t.Errorf("unexpected value: %+v", s)
	}

	if _, err := FromFileWithContext[sample](context.Background(), srv.URL+"/missing.json"); err == nil {
		t.Error("expected error for 404")
	}
}
