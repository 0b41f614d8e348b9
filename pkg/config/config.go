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

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/stellate/stellate-go/pkg/defaults"
	"github.com/stellate/stellate-go/pkg/errors"
	"github.com/stellate/stellate-go/pkg/queue"
	"github.com/stellate/stellate-go/pkg/serializer"
)

// Environment variable names.
const (
	EnvServiceName   = "STELLATE_SERVICE_NAME"
	EnvLoggingToken  = "STELLATE_LOGGING_TOKEN"
	EnvSchemaToken   = "STELLATE_SCHEMA_TOKEN"
	EnvBaseURL       = "STELLATE_BASE_URL"
	EnvUpstreamURL   = "STELLATE_UPSTREAM_URL"
	EnvQueueCapacity = "STELLATE_QUEUE_CAPACITY"
	EnvDropPolicy    = "STELLATE_DROP_POLICY"
	EnvPort          = "PORT"
)

// Config holds pipeline configuration.
type Config struct {
	// ServiceName selects https://{ServiceName}.stellate.sh.
	ServiceName  string `json:"serviceName" yaml:"serviceName"`
	LoggingToken string `json:"loggingToken" yaml:"loggingToken"`
	SchemaToken  string `json:"schemaToken" yaml:"schemaToken"`

	// BaseURL overrides the collector base URL.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	Queue    QueueConfig    `json:"queue" yaml:"queue"`
	Delivery DeliveryConfig `json:"delivery" yaml:"delivery"`
	Proxy    ProxyConfig    `json:"proxy" yaml:"proxy"`
}

// QueueConfig bounds the delivery queue. Capacity 0 means unbounded.
type QueueConfig struct {
	Capacity   int    `json:"capacity" yaml:"capacity"`
	DropPolicy string `json:"dropPolicy,omitempty" yaml:"dropPolicy,omitempty"`
}

// DeliveryConfig tunes the outbound collector calls.
type DeliveryConfig struct {
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	DrainTimeout time.Duration `json:"drainTimeout" yaml:"drainTimeout"`
	Compress     bool          `json:"compress" yaml:"compress"`
	UserAgent    string        `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
}

// ProxyConfig configures the instrumented GraphQL proxy.
type ProxyConfig struct {
	Upstream        string        `json:"upstream" yaml:"upstream"`
	Path            string        `json:"path" yaml:"path"`
	Address         string        `json:"address" yaml:"address"`
	Port            int           `json:"port" yaml:"port"`
	RateLimit       rate.Limit    `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst  int           `json:"rateLimitBurst" yaml:"rateLimitBurst"`
	UpstreamTimeout time.Duration `json:"upstreamTimeout" yaml:"upstreamTimeout"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		Queue: QueueConfig{
			DropPolicy: string(queue.DropNewest),
		},
		Delivery: DeliveryConfig{
			Timeout:      defaults.DeliveryTimeout,
			DrainTimeout: defaults.DrainTimeout,
		},
		Proxy: ProxyConfig{
			Path:            "/graphql",
			Port:            8080,
			RateLimit:       100, // 100 req/s
			RateLimitBurst:  200, // burst of 200
			UpstreamTimeout: defaults.UpstreamTimeout,
		},
	}
}

// Load builds a Config from defaults, the optional file at path, and the environment.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		fromFile, err := serializer.FromFile[Config](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
		}
		cfg.merge(fromFile)
		slog.Debug("loaded config file", "path", path)
	}

	cfg.applyEnv()
	return cfg, nil
}

// merge copies the non-zero values of other into c.
func (c *Config) merge(other *Config) {
	if other == nil {
		return
	}
	setString(&c.ServiceName, other.ServiceName)
	setString(&c.LoggingToken, other.LoggingToken)
	setString(&c.SchemaToken, other.SchemaToken)
	setString(&c.BaseURL, other.BaseURL)

	if other.Queue.Capacity != 0 {
		c.Queue.Capacity = other.Queue.Capacity
	}
	setString(&c.Queue.DropPolicy, other.Queue.DropPolicy)

	if other.Delivery.Timeout != 0 {
		c.Delivery.Timeout = other.Delivery.Timeout
	}
	if other.Delivery.DrainTimeout != 0 {
		c.Delivery.DrainTimeout = other.Delivery.DrainTimeout
	}
	c.Delivery.Compress = c.Delivery.Compress || other.Delivery.Compress
	setString(&c.Delivery.UserAgent, other.Delivery.UserAgent)

	setString(&c.Proxy.Upstream, other.Proxy.Upstream)
	setString(&c.Proxy.Path, other.Proxy.Path)
	setString(&c.Proxy.Address, other.Proxy.Address)
	if other.Proxy.Port != 0 {
		c.Proxy.Port = other.Proxy.Port
	}
	if other.Proxy.RateLimit != 0 {
		c.Proxy.RateLimit = other.Proxy.RateLimit
	}
	if other.Proxy.RateLimitBurst != 0 {
		c.Proxy.RateLimitBurst = other.Proxy.RateLimitBurst
	}
	if other.Proxy.UpstreamTimeout != 0 {
		c.Proxy.UpstreamTimeout = other.Proxy.UpstreamTimeout
	}
}

func (c *Config) applyEnv() {
	setString(&c.ServiceName, os.Getenv(EnvServiceName))
	setString(&c.LoggingToken, os.Getenv(EnvLoggingToken))
	setString(&c.SchemaToken, os.Getenv(EnvSchemaToken))
	setString(&c.BaseURL, os.Getenv(EnvBaseURL))
	setString(&c.Proxy.Upstream, os.Getenv(EnvUpstreamURL))
	setString(&c.Queue.DropPolicy, os.Getenv(EnvDropPolicy))

	if v := os.Getenv(EnvQueueCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Queue.Capacity = n
		} else {
			slog.Warn("ignoring invalid queue capacity", "env", EnvQueueCapacity, "value", v)
		}
	}

	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Proxy.Port = port
		} else {
			slog.Warn("ignoring invalid port", "env", EnvPort, "value", v)
		}
	}
}

// Validate checks the settings needed by the pipeline.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "service name is required")
	}
	if strings.ContainsAny(c.ServiceName, "/:?#@ ") {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "service name must be a bare host label",
			map[string]any{"serviceName": c.ServiceName})
	}
	if c.Queue.Capacity < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "queue capacity must not be negative")
	}
	if _, err := queue.ParseDropPolicy(c.Queue.DropPolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid queue configuration", err)
	}
	if c.BaseURL != "" {
		if err := validateURL(c.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid base URL", err)
		}
	}
	return nil
}

// ValidateProxy checks the settings needed to run the proxy.
func (c *Config) ValidateProxy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Proxy.Upstream == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "proxy upstream URL is required")
	}
	if err := validateURL(c.Proxy.Upstream); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid upstream URL", err)
	}
	if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "proxy port out of range",
			map[string]any{"port": c.Proxy.Port})
	}
	if !strings.HasPrefix(c.Proxy.Path, "/") {
		return errors.New(errors.ErrCodeInvalidRequest, "proxy path must start with /")
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
