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
	"os"

	"github.com/urfave/cli/v3"

	"github.com/stellate/stellate-go/pkg/fingerprint"
	"github.com/stellate/stellate-go/pkg/serializer"
)

// FingerprintResult is one line of fingerprint output.
type FingerprintResult struct {
	Input       string `json:"input" yaml:"input"`
	Bytes       int    `json:"bytes" yaml:"bytes"`
	Fingerprint uint32 `json:"fingerprint" yaml:"fingerprint"`
}

func fingerprintCmd() *cli.Command {
	return &cli.Command{
		Name:      "fingerprint",
		Usage:     "Compute the fingerprint of text or file contents",
		ArgsUsage: "[text...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File whose exact contents are fingerprinted (can be repeated)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			var results []FingerprintResult
			for _, text := range cmd.Args().Slice() {
				results = append(results, FingerprintResult{
					Input:       text,
					Bytes:       len(text),
					Fingerprint: fingerprint.String(text),
				})
			}
			for _, path := range cmd.StringSlice("file") {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %q: %w", path, err)
				}
				results = append(results, FingerprintResult{
					Input:       path,
					Bytes:       len(content),
					Fingerprint: fingerprint.Bytes(content),
				})
			}
			if len(results) == 0 {
				return fmt.Errorf("nothing to fingerprint: pass text arguments or --file")
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, results)
		},
	}
}
