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

package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stellate/stellate-go/pkg/pipeline"
	"github.com/stellate/stellate-go/pkg/proxy"
	"github.com/stellate/stellate-go/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the instrumented GraphQL proxy",
		Description: `Forward GraphQL requests to an upstream server and report one telemetry
record per operation to Stellate. Responses are returned unchanged; telemetry
delivery happens in the background and never delays or fails a request.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "upstream",
				Usage: "Upstream GraphQL endpoint URL",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path the proxy is served on (default /graphql)",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listen address",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default 8080 or $PORT)",
			},
			&cli.IntFlag{
				Name:  "queue-capacity",
				Usage: "Bound the delivery queue (0 = unbounded)",
			},
			&cli.StringFlag{
				Name:  "drop-policy",
				Usage: "Overflow policy of a bounded queue (drop-newest, drop-oldest)",
			},
			&cli.DurationFlag{
				Name:  "drain-timeout",
				Usage: "How long shutdown waits for queued telemetry (0 = default)",
			},
			&cli.BoolFlag{
				Name:  "compress",
				Usage: "Gzip telemetry request bodies",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			setIf(&cfg.Proxy.Upstream, cmd.String("upstream"))
			setIf(&cfg.Proxy.Path, cmd.String("path"))
			setIf(&cfg.Proxy.Address, cmd.String("address"))
			setIf(&cfg.Queue.DropPolicy, cmd.String("drop-policy"))
			if cmd.IsSet("port") {
				cfg.Proxy.Port = int(cmd.Int("port"))
			}
			if cmd.IsSet("queue-capacity") {
				cfg.Queue.Capacity = int(cmd.Int("queue-capacity"))
			}
			if cmd.IsSet("drain-timeout") {
				cfg.Delivery.DrainTimeout = cmd.Duration("drain-timeout")
			}
			if cmd.Bool("compress") {
				cfg.Delivery.Compress = true
			}
			if err := cfg.ValidateProxy(); err != nil {
				return err
			}

			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}
			// The worker outlives the signal so Shutdown can drain it.
			p.Start(context.WithoutCancel(ctx))

			h, err := proxy.New(cfg.Proxy.Upstream, p, proxy.WithTimeout(cfg.Proxy.UpstreamTimeout))
			if err != nil {
				return err
			}

			srvCfg := server.NewConfig()
			srvCfg.Address = cfg.Proxy.Address
			srvCfg.Port = cfg.Proxy.Port
			srvCfg.RateLimit = cfg.Proxy.RateLimit
			srvCfg.RateLimitBurst = cfg.Proxy.RateLimitBurst

			s := server.New(
				server.WithConfig(srvCfg),
				server.WithName(name),
				server.WithVersion(version),
				server.WithHandler(cfg.Proxy.Path, h),
			)

			runErr := s.Run(ctx)

			drainTelemetry(ctx, p)
			return runErr
		},
	}
}

// drainTelemetry stops the pipeline once the server is done. ctx is usually
// already canceled by a signal; Shutdown bounds the drain with the configured
// drain timeout.
func drainTelemetry(ctx context.Context, p *pipeline.Pipeline) {
	if err := p.Shutdown(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("telemetry not fully delivered", "error", err)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
