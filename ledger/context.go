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

package ledger

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/linkboard/database"
	"github.com/blinklabs-io/linkboard/event"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
)

// callContext is the program.Context for a single call. Account writes are
// buffered and reach the database transaction only when the handler
// succeeds. Events are held until the transaction commits.
type callContext struct {
	db       *database.Database
	txn      *database.Txn
	accounts map[registry.Identity]*database.Account
	dirty    []registry.Identity
	signers  map[registry.Identity]bool
	writable map[registry.Identity]bool
	events   []event.Event
}

func newCallContext(
	db *database.Database,
	txn *database.Txn,
	metas []program.AccountMeta,
) *callContext {
	c := &callContext{
		db:       db,
		txn:      txn,
		accounts: make(map[registry.Identity]*database.Account),
		signers:  make(map[registry.Identity]bool),
		writable: make(map[registry.Identity]bool),
	}
	for _, meta := range metas {
		if meta.Signer {
			c.signers[meta.Address] = true
		}
		if meta.Writable {
			c.writable[meta.Address] = true
		}
	}
	return c
}

func (c *callContext) load(address registry.Identity) (*database.Account, error) {
	if acct, ok := c.accounts[address]; ok {
		return acct, nil
	}
	acct, err := c.db.GetAccount(address.Bytes(), c.txn)
	if err != nil {
		if !errors.Is(err, database.ErrAccountNotFound) {
			return nil, err
		}
		acct = &database.Account{}
	}
	c.accounts[address] = acct
	return acct, nil
}

func (c *callContext) markDirty(address registry.Identity) error {
	if !c.writable[address] {
		return fmt.Errorf("%w: %s", ErrAccountNotWritable, address)
	}
	for _, addr := range c.dirty {
		if addr == address {
			return nil
		}
	}
	c.dirty = append(c.dirty, address)
	return nil
}

// spendable returns the part of an account's balance that may leave it.
// Accounts holding data must stay rent exempt.
func spendable(acct *database.Account) uint64 {
	if len(acct.Data) == 0 {
		return acct.Balance
	}
	minBalance := MinimumBalance(uint64(len(acct.Data)))
	if acct.Balance <= minBalance {
		return 0
	}
	return acct.Balance - minBalance
}

func (c *callContext) CreateAccount(
	payer, address registry.Identity,
	space uint64,
) error {
	if space > MaxAccountSpace {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, space)
	}
	if !c.signers[payer] || !c.signers[address] {
		return ErrMissingSignature
	}
	acct, err := c.load(address)
	if err != nil {
		return err
	}
	if acct.Balance > 0 || acct.Owner != registry.SystemProgramID || len(acct.Data) > 0 {
		return fmt.Errorf("%w: %s", ErrAccountInUse, address)
	}
	payerAcct, err := c.load(payer)
	if err != nil {
		return err
	}
	if len(payerAcct.Data) > 0 {
		return fmt.Errorf("%w: %s", ErrNotSystemAccount, payer)
	}
	rent := MinimumBalance(space)
	if payerAcct.Balance < rent {
		return fmt.Errorf(
			"%w: %s needs %d, has %d",
			ErrInsufficientFunds,
			payer,
			rent,
			payerAcct.Balance,
		)
	}
	if err := c.markDirty(payer); err != nil {
		return err
	}
	if err := c.markDirty(address); err != nil {
		return err
	}
	payerAcct.Balance -= rent
	acct.Balance += rent
	acct.Owner = program.ProgramID
	acct.Data = make([]byte, space)
	return nil
}

func (c *callContext) AccountData(address registry.Identity) ([]byte, error) {
	acct, err := c.load(address)
	if err != nil {
		return nil, err
	}
	if len(acct.Data) == 0 {
		return nil, nil
	}
	if acct.Owner != program.ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrNotProgramOwned, address)
	}
	return bytes.Clone(acct.Data), nil
}

func (c *callContext) SetAccountData(
	address registry.Identity,
	data []byte,
) error {
	acct, err := c.load(address)
	if err != nil {
		return err
	}
	if acct.Owner != program.ProgramID {
		return fmt.Errorf("%w: %s", ErrNotProgramOwned, address)
	}
	if len(data) != len(acct.Data) {
		return fmt.Errorf(
			"%w: %d != %d",
			ErrDataSizeChanged,
			len(data),
			len(acct.Data),
		)
	}
	if err := c.markDirty(address); err != nil {
		return err
	}
	acct.Data = bytes.Clone(data)
	return nil
}

func (c *callContext) Transfer(
	from, to registry.Identity,
	amount uint64,
) error {
	if !c.signers[from] {
		return fmt.Errorf("%w: %s", ErrMissingSignature, from)
	}
	src, err := c.load(from)
	if err != nil {
		return err
	}
	if len(src.Data) > 0 {
		return fmt.Errorf("%w: %s", ErrNotSystemAccount, from)
	}
	if spendable(src) < amount {
		return fmt.Errorf(
			"%w: %s has %d, needs %d",
			ErrInsufficientFunds,
			from,
			src.Balance,
			amount,
		)
	}
	dst, err := c.load(to)
	if err != nil {
		return err
	}
	if err := c.markDirty(from); err != nil {
		return err
	}
	if err := c.markDirty(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if dst.Balance+amount < dst.Balance {
		return fmt.Errorf("%w: %s", ErrBalanceOverflow, to)
	}
	src.Balance -= amount
	dst.Balance += amount
	return nil
}

func (c *callContext) Emit(eventType string, data any) {
	evtType := event.EventType(eventType)
	c.events = append(c.events, event.NewEvent(evtType, data))
}

// flush writes the modified accounts into the database transaction
func (c *callContext) flush() error {
	for _, addr := range c.dirty {
		if err := c.db.SetAccount(addr.Bytes(), c.accounts[addr], c.txn); err != nil {
			return fmt.Errorf("store account %s: %w", addr, err)
		}
	}
	return nil
}
