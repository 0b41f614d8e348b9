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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/stellate/stellate-go/pkg/logging"
)

// Option is a functional option for configuring Server instances.
type Option func(*Server)

// WithName sets the server name reported on the root endpoint.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the server version reported on the root endpoint.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithHandler mounts handler at pattern behind the middleware chain.
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s *Server) {
		if s.config.Handlers == nil {
			s.config.Handlers = map[string]http.Handler{}
		}
		s.config.Handlers[pattern] = handler
	}
}

// WithConfig replaces the server configuration. Options applied after it
// modify the new config.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// Server represents the HTTP server
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	listener    net.Listener

	mu    sync.RWMutex
	ready bool
}

// New creates a new server instance
func New(opts ...Option) *Server {
	s := &Server{
		config: NewConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.setupRoutes(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		ErrorLog:          logging.NewLogLogger(slog.LevelWarn, false),
	}

	return s
}

// Handler returns the root handler including all routes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("starting server",
		slog.String("name", s.config.Name),
		slog.String("version", s.config.Version),
		slog.String("address", s.httpServer.Addr),
		slog.Any("rateLimit", s.config.RateLimit),
		slog.Int("rateLimitBurst", s.config.RateLimitBurst),
		slog.Duration("readTimeout", s.config.ReadTimeout),
		slog.Duration("writeTimeout", s.config.WriteTimeout),
		slog.Duration("shutdownTimeout", s.config.ShutdownTimeout),
		slog.Any("routes", s.Routes()),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.setReady(true)
		var err error
		if s.listener != nil {
			err = s.httpServer.Serve(s.listener)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.setReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server", "timeout", s.config.ShutdownTimeout)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
