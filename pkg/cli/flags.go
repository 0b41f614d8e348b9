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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/stellate/stellate-go/pkg/config"
	"github.com/stellate/stellate-go/pkg/serializer"
)

var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
	}
)

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"service", &cfg.ServiceName},
		{"logging-token", &cfg.LoggingToken},
		{"schema-token", &cfg.SchemaToken},
		{"base-url", &cfg.BaseURL},
	}
	for _, o := range overrides {
		if v := cmd.String(o.flag); v != "" {
			*o.dst = v
		}
	}
	return cfg, nil
}
