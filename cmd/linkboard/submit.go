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
	"fmt"
	"time"

	"github.com/blinklabs-io/linkboard/api"
	"github.com/blinklabs-io/linkboard/keystore"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/spf13/cobra"
)

func newClient(cmd *cobra.Command) (*api.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.APIURL), nil
}

// submitInstruction signs ins with every key, submits it and prints the
// receipt
func submitInstruction(
	cmd *cobra.Command,
	ins program.Instruction,
	keys ...*keystore.SigningKey,
) (*ledger.Receipt, error) {
	client, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	//nolint:gosec
	tx := ledger.NewTransaction(ins, uint64(time.Now().UnixNano()))
	for _, key := range keys {
		if err := tx.Sign(key.PrivateKey()); err != nil {
			return nil, err
		}
	}
	receipt, err := client.Submit(cmd.Context(), tx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"%s %s %s\n",
		receipt.Hash,
		receipt.Op,
		receipt.Status,
	)
	return receipt, nil
}

// formatCoins renders a native amount as coins with nine decimals
func formatCoins(amount uint64) string {
	return fmt.Sprintf(
		"%d.%09d",
		amount/program.UnitsPerCoin,
		amount%program.UnitsPerCoin,
	)
}
