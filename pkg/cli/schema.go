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

	"github.com/urfave/cli/v3"

	"github.com/stellate/stellate-go/pkg/pipeline"
	"github.com/stellate/stellate-go/pkg/serializer"
)

func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Manage the schema known to Stellate",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Upload an introspection result to Stellate",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Introspection result (JSON or YAML, local path or http(s) URL)",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if err := cfg.Validate(); err != nil {
						return err
					}
					if cfg.SchemaToken == "" {
						return fmt.Errorf("schema token is required (--schema-token or STELLATE_SCHEMA_TOKEN)")
					}

					path := cmd.String("file")
					doc, err := serializer.FromFileWithContext[map[string]any](ctx, path)
					if err != nil {
						return err
					}
					schema, err := introspection(*doc)
					if err != nil {
						return fmt.Errorf("invalid introspection result in %q: %w", path, err)
					}

					p, err := pipeline.New(cfg)
					if err != nil {
						return err
					}
					if err := p.SyncSchema(ctx, schema); err != nil {
						return err
					}
					slog.Debug("schema file synced", "file", path)
					return nil
				},
			},
		},
	}
}

// introspection returns the {"__schema": ...} document, unwrapping a full
// GraphQL response if needed.
func introspection(doc map[string]any) (map[string]any, error) {
	if _, ok := doc["__schema"]; ok {
		return doc, nil
	}
	if data, ok := doc["data"].(map[string]any); ok {
		if _, ok := data["__schema"]; ok {
			return data, nil
		}
	}
	return nil, fmt.Errorf("missing __schema")
}
