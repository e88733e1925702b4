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
	"strconv"
	"text/tabwriter"

	"github.com/blinklabs-io/linkboard/keystore"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/spf13/cobra"
)

func registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Registry commands",
	}

	cmd.AddCommand(registryCreateCommand())
	cmd.AddCommand(registryAddCommand())
	cmd.AddCommand(registryVoteCommand())
	cmd.AddCommand(registryVoteEntryCommand())
	cmd.AddCommand(registryShowCommand())
	cmd.AddCommand(registryListCommand())

	return cmd
}

func registryCreateCommand() *cobra.Command {
	var registryKeyFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Initialize a registry account, paid for by the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, err := loadKey(cmd)
			if err != nil {
				return err
			}
			regKey, err := keystore.LoadSigningKey(registryKeyFile)
			if err != nil {
				return fmt.Errorf("loading registry key %s: %w", registryKeyFile, err)
			}
			_, err = submitInstruction(
				cmd,
				program.NewInitialize(regKey.Identity(), payer.Identity()),
				regKey,
				payer,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry %s\n", regKey.Identity())
			return nil
		},
	}
	cmd.Flags().StringVar(&registryKeyFile, "registry-key", "", "signing key holding the registry address")
	_ = cmd.MarkFlagRequired("registry-key")
	return cmd
}

func registryAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <registry> <link>",
		Short: "Add a link, submitted by the configured key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			_, err = submitInstruction(
				cmd,
				program.NewAddEntry(reg, key.Identity(), args[1]),
				key,
			)
			return err
		},
	}
}

func registryVoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <registry> <link>",
		Short: "Vote for every entry with the given link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			_, err = submitInstruction(cmd, program.NewVote(reg, args[1]))
			return err
		},
	}
}

func registryVoteEntryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vote-entry <registry> <index>",
		Short: "Vote for a single entry by its index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid entry index %q: %w", args[1], err)
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			rec, err := client.Registry(cmd.Context(), reg)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= len(rec.Entries) {
				return fmt.Errorf(
					"entry index %d out of range, registry has %d entries",
					idx,
					len(rec.Entries),
				)
			}
			entry := rec.Entries[idx]
			_, err = submitInstruction(
				cmd,
				program.NewVoteEntry(reg, registry.Entry{
					Link:      entry.Link,
					Submitter: entry.Submitter,
					Votes:     entry.Votes,
				}),
			)
			return err
		},
	}
}

func registryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <registry>",
		Short: "Show the entries of a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.ParseIdentity(args[0])
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			rec, err := client.Registry(cmd.Context(), reg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(
				out,
				"registry %s: %d entries, %d votes\n",
				rec.Address,
				rec.EntryCount,
				rec.VoteCount,
			)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tVOTES\tSUBMITTER\tLINK")
			for _, entry := range rec.Entries {
				fmt.Fprintf(
					w,
					"%d\t%d\t%s\t%s\n",
					entry.Index,
					entry.Votes,
					entry.Submitter,
					entry.Link,
				)
			}
			return w.Flush()
		},
	}
}

func registryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registry accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			regs, err := client.Registries(cmd.Context())
			if err != nil {
				return err
			}
			for _, reg := range regs {
				fmt.Fprintln(cmd.OutOrStdout(), reg.String())
			}
			return nil
		},
	}
}
