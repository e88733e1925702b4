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
	"fmt"
	"strings"

	"github.com/blinklabs-io/linkboard/internal/config"
	"github.com/blinklabs-io/linkboard/keystore"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

func loadKey(cmd *cobra.Command) (*keystore.SigningKey, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	key, err := keystore.LoadSigningKey(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading key %s: %w", cfg.KeyFile, err)
	}
	return key, nil
}

// resolveAddress parses an address argument, falling back to the identity of
// the configured key when no argument was given
func resolveAddress(cmd *cobra.Command, args []string) (registry.Identity, error) {
	if len(args) > 0 {
		return registry.ParseIdentity(args[0])
	}
	key, err := loadKey(cmd)
	if err != nil {
		return registry.Identity{}, err
	}
	return key.Identity(), nil
}

func keygenCommand() *cobra.Command {
	var (
		outFile     string
		vkeyFile    string
		description string
		encrypt     bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if outFile == "" {
				outFile = cfg.KeyFile
			}
			key, err := keystore.GenerateSigningKey(description)
			if err != nil {
				return err
			}
			if err := keystore.SaveSigningKey(outFile, key, encrypt); err != nil {
				return err
			}
			if vkeyFile == "" {
				vkeyFile = strings.TrimSuffix(outFile, ".skey") + ".vkey"
			}
			if err := keystore.SaveVerificationKey(vkeyFile, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key.Identity())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "signing key output path (defaults to the configured key file)")
	cmd.Flags().StringVar(&vkeyFile, "vkey-out", "", "verification key output path (defaults to the signing key path with a .vkey suffix)")
	cmd.Flags().StringVar(&description, "description", "", "description stored in the key file")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "encrypt the signing key with sops (uses LINKBOARD_*_KMS_* settings)")
	return cmd
}

func addressCommand() *cobra.Command {
	var vkeyFile string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of a key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if vkeyFile != "" {
				id, err := keystore.LoadVerificationKey(vkeyFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
				return nil
			}
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key.Identity())
			return nil
		},
	}
	cmd.Flags().StringVar(&vkeyFile, "vkey", "", "read the address from a verification key file instead")
	return cmd
}
