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
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/linkboard/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errInUse        = errors.New("account in use")
	errInsufficient = errors.New("insufficient funds")
)

type mockAccount struct {
	balance uint64
	owner   registry.Identity
	data    []byte
}

// mockContext implements Context on top of a map, without rollback
type mockContext struct {
	accounts map[registry.Identity]*mockAccount
	events   []string
	xferErr  error
}

func newMockContext() *mockContext {
	return &mockContext{
		accounts: make(map[registry.Identity]*mockAccount),
	}
}

func (m *mockContext) account(addr registry.Identity) *mockAccount {
	acct, ok := m.accounts[addr]
	if !ok {
		acct = &mockAccount{}
		m.accounts[addr] = acct
	}
	return acct
}

func (m *mockContext) CreateAccount(
	payer, address registry.Identity,
	space uint64,
) error {
	if acct, ok := m.accounts[address]; ok && acct.owner != registry.SystemProgramID {
		return errInUse
	}
	acct := m.account(address)
	acct.owner = ProgramID
	acct.data = make([]byte, space)
	return nil
}

func (m *mockContext) AccountData(address registry.Identity) ([]byte, error) {
	return bytes.Clone(m.account(address).data), nil
}

func (m *mockContext) SetAccountData(
	address registry.Identity,
	data []byte,
) error {
	m.account(address).data = bytes.Clone(data)
	return nil
}

func (m *mockContext) Transfer(
	from, to registry.Identity,
	amount uint64,
) error {
	if m.xferErr != nil {
		return m.xferErr
	}
	src := m.account(from)
	if src.balance < amount {
		return errInsufficient
	}
	src.balance -= amount
	m.account(to).balance += amount
	return nil
}

func (m *mockContext) Emit(eventType string, _ any) {
	m.events = append(m.events, eventType)
}

func (m *mockContext) record(t *testing.T, addr registry.Identity) *registry.Record {
	t.Helper()
	rec, err := registry.Decode(m.account(addr).data)
	require.NoError(t, err)
	return rec
}

var (
	testRegistry = registry.DeriveIdentity("registry")
	testPayer    = registry.DeriveIdentity("payer")
	testBob      = registry.DeriveIdentity("bob")
)

const testLink = "https://media.example.com/media/2yLNN4wTy7Zr8JSXHB/giphy.gif"

func initializedContext(t *testing.T) *mockContext {
	t.Helper()
	ctx := newMockContext()
	ins := NewInitialize(testRegistry, testPayer)
	require.NoError(t, Process(ctx, &ins))
	return ctx
}

func TestInitializeCreatesEmptyRegistry(t *testing.T) {
	ctx := initializedContext(t)
	acct := ctx.account(testRegistry)
	assert.Equal(t, ProgramID, acct.owner)
	assert.Len(t, acct.data, int(RegistrySpace))
	rec := ctx.record(t, testRegistry)
	assert.Equal(t, uint64(0), rec.EntryCount)
	assert.Equal(t, uint64(0), rec.VoteCount)
	assert.Empty(t, rec.Entries)
	assert.Equal(t, []string{EventTypeInitialized}, ctx.events)
}

func TestInitializeTwiceFails(t *testing.T) {
	ctx := initializedContext(t)
	ins := NewAddEntry(testRegistry, testBob, testLink)
	require.NoError(t, Process(ctx, &ins))
	before := bytes.Clone(ctx.account(testRegistry).data)

	again := NewInitialize(testRegistry, testPayer)
	err := Process(ctx, &again)
	require.ErrorIs(t, err, errInUse)
	assert.Equal(t, before, ctx.account(testRegistry).data)
}

func TestAddEntryUsesSigner(t *testing.T) {
	ctx := initializedContext(t)
	ins := NewAddEntry(testRegistry, testBob, testLink)
	require.NoError(t, Process(ctx, &ins))
	rec := ctx.record(t, testRegistry)
	require.Len(t, rec.Entries, 1)
	assert.Equal(t, uint64(1), rec.EntryCount)
	assert.Equal(
		t,
		registry.Entry{Link: testLink, Submitter: testBob},
		rec.Entries[0],
	)
}

func TestAddEntryOnMissingRegistry(t *testing.T) {
	ctx := newMockContext()
	ins := NewAddEntry(testRegistry, testBob, testLink)
	err := Process(ctx, &ins)
	require.ErrorIs(t, err, ErrAccountNotCreated)
}

func TestAddEntryCapacityLeavesRegistryUnchanged(t *testing.T) {
	ctx := initializedContext(t)
	link := string(bytes.Repeat([]byte{'x'}, 500))
	var err error
	for err == nil {
		ins := NewAddEntry(testRegistry, testBob, link)
		err = Process(ctx, &ins)
	}
	require.ErrorIs(t, err, registry.ErrCapacityExceeded)
	before := bytes.Clone(ctx.account(testRegistry).data)
	ins := NewAddEntry(testRegistry, testBob, link)
	require.ErrorIs(t, Process(ctx, &ins), registry.ErrCapacityExceeded)
	assert.Equal(t, before, ctx.account(testRegistry).data)
}

func TestVoteDuplicateLinks(t *testing.T) {
	ctx := initializedContext(t)
	for range 2 {
		ins := NewAddEntry(testRegistry, testBob, testLink)
		require.NoError(t, Process(ctx, &ins))
	}
	vote := NewVote(testRegistry, testLink)
	require.NoError(t, Process(ctx, &vote))
	rec := ctx.record(t, testRegistry)
	assert.Equal(t, uint64(1), rec.VoteCount)
	assert.Equal(t, uint64(1), rec.Entries[0].Votes)
	assert.Equal(t, uint64(1), rec.Entries[1].Votes)
}

func TestVoteNoMatch(t *testing.T) {
	ctx := initializedContext(t)
	ins := NewAddEntry(testRegistry, testBob, testLink)
	require.NoError(t, Process(ctx, &ins))
	vote := NewVote(testRegistry, "https://nowhere.example.com")
	require.NoError(t, Process(ctx, &vote))
	rec := ctx.record(t, testRegistry)
	assert.Equal(t, uint64(1), rec.VoteCount)
	assert.Equal(t, uint64(0), rec.Entries[0].Votes)
}

func TestVoteEntryIsPersisted(t *testing.T) {
	ctx := initializedContext(t)
	ins := NewAddEntry(testRegistry, testBob, testLink)
	require.NoError(t, Process(ctx, &ins))
	snapshot := ctx.record(t, testRegistry).Entries[0]

	vote := NewVoteEntry(testRegistry, snapshot)
	require.NoError(t, Process(ctx, &vote))
	rec := ctx.record(t, testRegistry)
	assert.Equal(t, uint64(1), rec.VoteCount)
	assert.Equal(t, uint64(1), rec.Entries[0].Votes)
}

func TestTransferMovesTip(t *testing.T) {
	ctx := newMockContext()
	ctx.account(testPayer).balance = TipAmount * 3
	ins := NewTransfer(testPayer, testBob)
	require.NoError(t, Process(ctx, &ins))
	assert.Equal(t, TipAmount*2, ctx.account(testPayer).balance)
	assert.Equal(t, TipAmount, ctx.account(testBob).balance)
	assert.Equal(t, []string{EventTypeTransfer}, ctx.events)
}

func TestTransferFailureAborts(t *testing.T) {
	ctx := newMockContext()
	ins := NewTransfer(testPayer, testBob)
	err := Process(ctx, &ins)
	require.ErrorIs(t, err, ErrTransferFailed)
	require.ErrorIs(t, err, errInsufficient)
	assert.Empty(t, ctx.events)

	ctx.xferErr = errors.New("boom")
	err = Process(ctx, &ins)
	require.ErrorIs(t, err, ErrTransferFailed)
}

func TestValidateRoles(t *testing.T) {
	testDefs := []struct {
		name    string
		ins     Instruction
		wantErr error
	}{
		{
			name:    "unknown op",
			ins:     Instruction{Op: 99},
			wantErr: ErrUnknownOp,
		},
		{
			name:    "missing accounts",
			ins:     Instruction{Op: OpAddEntry, Accounts: []AccountMeta{{Address: testRegistry, Writable: true}}},
			wantErr: ErrMissingAccounts,
		},
		{
			name: "submitter not signer",
			ins: Instruction{Op: OpAddEntry, Accounts: []AccountMeta{
				{Address: testRegistry, Writable: true},
				{Address: testBob},
			}},
			wantErr: ErrSignerRequired,
		},
		{
			name: "registry not writable",
			ins: Instruction{Op: OpVote, Accounts: []AccountMeta{
				{Address: testRegistry},
			}},
			wantErr: ErrWritableRequired,
		},
		{
			name: "wrong system account",
			ins: Instruction{Op: OpTransfer, Accounts: []AccountMeta{
				{Address: testPayer, Signer: true, Writable: true},
				{Address: testBob, Writable: true},
				{Address: testBob},
			}},
			wantErr: ErrNotSystemProgram,
		},
		{
			name:    "tip to system program",
			ins:     NewTransfer(testPayer, registry.SystemProgramID),
			wantErr: ErrSystemAccountWrite,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(&testDef.ins), testDef.wantErr)
		})
	}
}

func TestInstructionWireRoundTrip(t *testing.T) {
	ins := NewVoteEntry(
		testRegistry,
		registry.Entry{Link: testLink, Submitter: testBob, Votes: 3},
	)
	data, err := ins.Encode()
	require.NoError(t, err)
	got, err := DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, ins.Op, got.Op)
	assert.Equal(t, ins.Accounts, got.Accounts)
	assert.Equal(t, ins.Entry.Entry(), got.Entry.Entry())
	assert.Empty(t, got.Signers())

	xfer := NewTransfer(testPayer, testBob)
	assert.Equal(t, []registry.Identity{testPayer}, xfer.Signers())
}
