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
	"text/tabwriter"

	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/spf13/cobra"
)

func tipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tip <address>",
		Short: fmt.Sprintf("Send a %s coin tip from the configured key", formatCoins(program.TipAmount)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := registry.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			_, err = submitInstruction(
				cmd,
				program.NewTransfer(key.Identity(), to),
				key,
			)
			return err
		},
	}
}

func balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show an account balance, by default for the configured key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := resolveAddress(cmd, args)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			info, err := client.Account(cmd.Context(), addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s %s\n",
				info.Address,
				formatCoins(info.Balance),
			)
			return nil
		},
	}
}

func airdropCommand() *cobra.Command {
	var amount uint64
	cmd := &cobra.Command{
		Use:   "airdrop [address]",
		Short: "Request funds from a development node's faucet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := resolveAddress(cmd, args)
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			info, err := client.Airdrop(cmd.Context(), addr, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s %s\n",
				info.Address,
				formatCoins(info.Balance),
			)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&amount, "amount", program.UnitsPerCoin, "amount in native units")
	return cmd
}

func historyCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "history [address]",
		Short: "List recent transactions, optionally for one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr registry.Identity
			if len(args) > 0 {
				var err error
				addr, err = registry.ParseIdentity(args[0])
				if err != nil {
					return err
				}
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			txs, err := client.Transactions(cmd.Context(), addr, count)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HASH\tOP\tSTATUS\tERROR")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tx.Hash, tx.Op, tx.Status, tx.Error)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of transactions to show")
	return cmd
}
