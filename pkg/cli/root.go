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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/stellate/stellate-go/pkg/logging"
)

const (
	name           = "stellate"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the CLI with os.Args and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Usage:                 "Stellate GraphQL telemetry tooling",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path or URL (YAML or JSON)",
				Sources: cli.EnvVars("STELLATE_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from a dotenv file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a size-rotated file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "service",
				Usage: "Stellate service name",
			},
			&cli.StringFlag{
				Name:  "logging-token",
				Usage: "Token for the Stellate logging endpoint",
			},
			&cli.StringFlag{
				Name:  "schema-token",
				Usage: "Token for the Stellate schema endpoint",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Override the collector base URL (default https://{service}.stellate.sh)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if envFile := cmd.String("env-file"); envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return ctx, fmt.Errorf("failed to load env file %q: %w", envFile, err)
				}
			}
			if logFile := cmd.String("log-file"); logFile != "" {
				logging.SetDefaultStructuredLoggerWithWriter(logging.NewFileWriter(logFile),
					name, version, cmd.String("log-level"))
			} else {
				logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			}
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			schemaCmd(),
			fingerprintCmd(),
		},
	}
}
