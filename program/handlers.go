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

package program

import (
	"fmt"

	"github.com/blinklabs-io/linkboard/registry"
)

// Initialize creates the registry account and stores an empty record in it.
// A second call for the same address fails in the host's CreateAccount.
func Initialize(ctx Context, registryAddr, payer registry.Identity) error {
	if err := ctx.CreateAccount(payer, registryAddr, RegistrySpace); err != nil {
		return err
	}
	data, err := registry.NewRecord().Encode(RegistrySpace)
	if err != nil {
		return err
	}
	if err := ctx.SetAccountData(registryAddr, data); err != nil {
		return err
	}
	ctx.Emit(
		EventTypeInitialized,
		InitializedEvent{Registry: registryAddr, Payer: payer},
	)
	return nil
}

// AddEntry appends a new entry submitted by the signer
func AddEntry(
	ctx Context,
	registryAddr, submitter registry.Identity,
	link string,
) error {
	rec, space, err := loadRecord(ctx, registryAddr)
	if err != nil {
		return err
	}
	entry, err := rec.Append(link, submitter, space)
	if err != nil {
		return err
	}
	if err := storeRecord(ctx, registryAddr, rec, space); err != nil {
		return err
	}
	ctx.Emit(
		EventTypeEntryAdded,
		EntryAddedEvent{
			Registry: registryAddr,
			Index:    rec.EntryCount - 1,
			Entry:    entry,
		},
	)
	return nil
}

// Vote credits every entry with a matching link and counts the call. It
// succeeds even when nothing matches.
func Vote(ctx Context, registryAddr registry.Identity, link string) error {
	rec, space, err := loadRecord(ctx, registryAddr)
	if err != nil {
		return err
	}
	matched := rec.Vote(link)
	if err := storeRecord(ctx, registryAddr, rec, space); err != nil {
		return err
	}
	ctx.Emit(
		EventTypeVoted,
		VotedEvent{
			Registry:  registryAddr,
			Link:      link,
			Matched:   matched,
			VoteCount: rec.VoteCount,
		},
	)
	return nil
}

// VoteEntry credits the stored entry matching the snapshot's link and
// submitter, without scanning for every duplicate link
func VoteEntry(
	ctx Context,
	registryAddr registry.Identity,
	snapshot registry.Entry,
) error {
	rec, space, err := loadRecord(ctx, registryAddr)
	if err != nil {
		return err
	}
	_, found := rec.VoteEntry(snapshot)
	if err := storeRecord(ctx, registryAddr, rec, space); err != nil {
		return err
	}
	matched := 0
	if found {
		matched = 1
	}
	ctx.Emit(
		EventTypeVoted,
		VotedEvent{
			Registry:  registryAddr,
			Link:      snapshot.Link,
			Matched:   matched,
			VoteCount: rec.VoteCount,
		},
	)
	return nil
}

// Transfer moves TipAmount from one party to another. Any failure of the
// host transfer aborts the call.
func Transfer(ctx Context, from, to registry.Identity) error {
	if err := ctx.Transfer(from, to, TipAmount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	ctx.Emit(
		EventTypeTransfer,
		TransferEvent{From: from, To: to, Amount: TipAmount},
	)
	return nil
}

func loadRecord(
	ctx Context,
	registryAddr registry.Identity,
) (*registry.Record, uint64, error) {
	data, err := ctx.AccountData(registryAddr)
	if err != nil {
		return nil, 0, err
	}
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrAccountNotCreated, registryAddr)
	}
	rec, err := registry.Decode(data)
	if err != nil {
		return nil, 0, fmt.Errorf("load registry %s: %w", registryAddr, err)
	}
	return rec, uint64(len(data)), nil
}

func storeRecord(
	ctx Context,
	registryAddr registry.Identity,
	rec *registry.Record,
	space uint64,
) error {
	data, err := rec.Encode(space)
	if err != nil {
		return err
	}
	return ctx.SetAccountData(registryAddr, data)
}
