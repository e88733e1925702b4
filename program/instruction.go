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

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/linkboard/registry"
)

type Opcode uint8

const (
	OpInitialize Opcode = 1
	OpAddEntry   Opcode = 2
	OpVote       Opcode = 3
	OpVoteEntry  Opcode = 4
	OpTransfer   Opcode = 5
)

func (o Opcode) String() string {
	switch o {
	case OpInitialize:
		return "initialize"
	case OpAddEntry:
		return "add_entry"
	case OpVote:
		return "vote"
	case OpVoteEntry:
		return "vote_entry"
	case OpTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// AccountMeta references one account taking part in an instruction
type AccountMeta struct {
	cbor.StructAsArray
	Address  registry.Identity
	Signer   bool
	Writable bool
}

// EntryArg is the wire form of a registry entry snapshot
type EntryArg struct {
	cbor.StructAsArray
	Link      string
	Submitter registry.Identity
	Votes     uint64
}

func (e EntryArg) Entry() registry.Entry {
	return registry.Entry{
		Link:      e.Link,
		Submitter: e.Submitter,
		Votes:     e.Votes,
	}
}

// Instruction is a single call into the program
type Instruction struct {
	cbor.StructAsArray
	Op       Opcode
	Accounts []AccountMeta
	Link     string
	Entry    EntryArg
}

// Encode returns the CBOR wire form of the instruction
func (i *Instruction) Encode() ([]byte, error) {
	return cbor.Encode(i)
}

// DecodeInstruction parses the CBOR wire form of an instruction
func DecodeInstruction(data []byte) (*Instruction, error) {
	var ret Instruction
	if _, err := cbor.Decode(data, &ret); err != nil {
		return nil, fmt.Errorf("decode instruction: %w", err)
	}
	return &ret, nil
}

// Signers returns the addresses that must sign a transaction carrying this
// instruction
func (i *Instruction) Signers() []registry.Identity {
	var ret []registry.Identity
	for _, meta := range i.Accounts {
		if meta.Signer {
			ret = append(ret, meta.Address)
		}
	}
	return ret
}

// NewInitialize builds an Initialize instruction. The registry address must
// sign so that nobody can claim an address they do not hold the key for.
func NewInitialize(registryAddr, payer registry.Identity) Instruction {
	return Instruction{
		Op: OpInitialize,
		Accounts: []AccountMeta{
			{Address: registryAddr, Signer: true, Writable: true},
			{Address: payer, Signer: true, Writable: true},
			{Address: registry.SystemProgramID},
		},
	}
}

func NewAddEntry(
	registryAddr, submitter registry.Identity,
	link string,
) Instruction {
	return Instruction{
		Op: OpAddEntry,
		Accounts: []AccountMeta{
			{Address: registryAddr, Writable: true},
			{Address: submitter, Signer: true},
		},
		Link: link,
	}
}

func NewVote(registryAddr registry.Identity, link string) Instruction {
	return Instruction{
		Op: OpVote,
		Accounts: []AccountMeta{
			{Address: registryAddr, Writable: true},
		},
		Link: link,
	}
}

func NewVoteEntry(
	registryAddr registry.Identity,
	entry registry.Entry,
) Instruction {
	return Instruction{
		Op: OpVoteEntry,
		Accounts: []AccountMeta{
			{Address: registryAddr, Writable: true},
		},
		Entry: EntryArg{
			Link:      entry.Link,
			Submitter: entry.Submitter,
			Votes:     entry.Votes,
		},
	}
}

func NewTransfer(from, to registry.Identity) Instruction {
	return Instruction{
		Op: OpTransfer,
		Accounts: []AccountMeta{
			{Address: from, Signer: true, Writable: true},
			{Address: to, Writable: true},
			{Address: registry.SystemProgramID},
		},
	}
}
