// Copyright 2025 Blink Labs Software
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

package main

import (
	"errors"

	"github.com/blinklabs-io/linkboard/internal/config"
	"github.com/blinklabs-io/linkboard/internal/node"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	var devMode bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger and serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			if devMode {
				cfg.RunMode = config.RunModeDev
			}
			logger := commonRun()
			return node.Run(cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&devMode, "dev", false, "run in development mode with the faucet enabled")
	return cmd
}
