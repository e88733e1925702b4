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

// Package program implements the registry program: the state transitions
// applied to registry accounts and the fixed-amount tip transfer. It holds no
// state of its own. Every handler works through a host Context that supplies
// account storage, account creation and native value transfer, and that
// commits or discards the handler's effects as a whole.
package program

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/linkboard/registry"
)

const (
	// UnitsPerCoin is the number of native value units in one coin
	UnitsPerCoin uint64 = 1_000_000_000

	// TipAmount is the fixed amount moved by a Transfer (0.001 coin)
	TipAmount uint64 = UnitsPerCoin / 1000

	// RegistrySpace is the account size allocated by Initialize
	RegistrySpace = registry.DefaultSpace
)

// ProgramID owns every registry account
var ProgramID = registry.DeriveIdentity("linkboard.registry.program")

var (
	ErrUnknownOp          = errors.New("unknown instruction")
	ErrMissingAccounts    = errors.New("missing instruction accounts")
	ErrSignerRequired     = errors.New("account must sign")
	ErrWritableRequired   = errors.New("account must be writable")
	ErrNotSystemProgram   = errors.New("expected system program account")
	ErrSystemAccountWrite = errors.New("system program account is not writable")
	ErrTransferFailed     = errors.New("tip transfer failed")
	ErrAccountNotCreated  = errors.New("registry account not initialized")
)

// Event types emitted by handlers. The host publishes them only after the
// call has been committed.
const (
	EventTypeInitialized = "registry.initialized"
	EventTypeEntryAdded  = "registry.entry_added"
	EventTypeVoted       = "registry.voted"
	EventTypeTransfer    = "ledger.transfer"
)

type InitializedEvent struct {
	Registry registry.Identity
	Payer    registry.Identity
}

type EntryAddedEvent struct {
	Registry registry.Identity
	Index    uint64
	Entry    registry.Entry
}

type VotedEvent struct {
	Registry  registry.Identity
	Link      string
	Matched   int
	VoteCount uint64
}

type TransferEvent struct {
	From   registry.Identity
	To     registry.Identity
	Amount uint64
}

// Context is the host side of a call. All methods act on the call's private
// view of account state, which the host commits only if the handler succeeds.
type Context interface {
	// CreateAccount allocates space zeroed bytes at address, owned by
	// ProgramID and funded by payer. It fails if the address is in use.
	CreateAccount(payer, address registry.Identity, space uint64) error
	// AccountData returns the data of a program-owned account
	AccountData(address registry.Identity) ([]byte, error)
	// SetAccountData replaces the data of a program-owned account. The
	// length must not change.
	SetAccountData(address registry.Identity, data []byte) error
	// Transfer moves native value between system accounts
	Transfer(from, to registry.Identity, amount uint64) error
	// Emit queues an event for publication after commit
	Emit(eventType string, data any)
}

// Validate checks an instruction's account list against the roles its
// operation requires
func Validate(ins *Instruction) error {
	type role struct {
		signer   bool
		writable bool
		system   bool
	}
	var roles []role
	switch ins.Op {
	case OpInitialize:
		roles = []role{
			{signer: true, writable: true},
			{signer: true, writable: true},
			{system: true},
		}
	case OpAddEntry:
		roles = []role{
			{writable: true},
			{signer: true},
		}
	case OpVote, OpVoteEntry:
		roles = []role{
			{writable: true},
		}
	case OpTransfer:
		roles = []role{
			{signer: true, writable: true},
			{writable: true},
			{system: true},
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOp, ins.Op)
	}
	if len(ins.Accounts) < len(roles) {
		return fmt.Errorf(
			"%w: %s needs %d accounts, got %d",
			ErrMissingAccounts,
			ins.Op,
			len(roles),
			len(ins.Accounts),
		)
	}
	for idx, r := range roles {
		meta := ins.Accounts[idx]
		if r.signer && !meta.Signer {
			return fmt.Errorf("%w: account %d (%s)", ErrSignerRequired, idx, meta.Address)
		}
		if r.writable && !meta.Writable {
			return fmt.Errorf("%w: account %d (%s)", ErrWritableRequired, idx, meta.Address)
		}
		// The allocator never holds value
		if r.writable && meta.Address == registry.SystemProgramID {
			return fmt.Errorf("%w: account %d", ErrSystemAccountWrite, idx)
		}
		if r.system && meta.Address != registry.SystemProgramID {
			return fmt.Errorf("%w: account %d (%s)", ErrNotSystemProgram, idx, meta.Address)
		}
	}
	return nil
}

// Process validates an instruction and runs the matching handler
func Process(ctx Context, ins *Instruction) error {
	if err := Validate(ins); err != nil {
		return err
	}
	accts := ins.Accounts
	switch ins.Op {
	case OpInitialize:
		return Initialize(ctx, accts[0].Address, accts[1].Address)
	case OpAddEntry:
		return AddEntry(ctx, accts[0].Address, accts[1].Address, ins.Link)
	case OpVote:
		return Vote(ctx, accts[0].Address, ins.Link)
	case OpVoteEntry:
		return VoteEntry(ctx, accts[0].Address, ins.Entry.Entry())
	case OpTransfer:
		return Transfer(ctx, accts[0].Address, accts[1].Address)
	}
	return fmt.Errorf("%w: %s", ErrUnknownOp, ins.Op)
}
