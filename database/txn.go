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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/linkboard/database/types"
)

// Txn is one ledger call's view of both stores. Account state lives in the
// blob store and call history in the metadata store. A call that fails can
// discard its account writes and still commit its history record.
type Txn struct {
	db       *Database
	accounts types.Txn
	history  types.Txn
	mu       sync.Mutex
	done     bool
	update   bool
}

// Transaction starts a transaction over account state and history. It holds
// the metadata connection until it is committed or rolled back.
func (d *Database) Transaction(update bool) *Txn {
	return &Txn{
		db:       d,
		update:   update,
		accounts: d.blob.NewTransaction(update),
		history:  d.metadata.Transaction(),
	}
}

// AccountTransaction starts a transaction over account state only
func (d *Database) AccountTransaction(update bool) *Txn {
	return &Txn{
		db:       d,
		update:   update,
		accounts: d.blob.NewTransaction(update),
	}
}

func (t *Txn) accountTxn() types.Txn {
	if t == nil {
		return nil
	}
	return t.accounts
}

func (t *Txn) historyTxn() types.Txn {
	if t == nil {
		return nil
	}
	return t.history
}

// Do runs fn and commits, or rolls back if fn fails
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return t.Commit()
}

// DiscardAccounts drops the account writes made so far. The history side
// stays open and a later Commit records it alone.
func (t *Txn) DiscardAccounts() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.accounts == nil {
		return nil
	}
	err := t.accounts.Rollback()
	t.accounts = nil
	if err != nil {
		return fmt.Errorf("discard account state: %w", err)
	}
	return nil
}

// Commit writes account state before history. When both sides are present
// they are stamped with the same commit time, so a crash between the two is
// caught the next time the database is opened.
func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	if !t.update {
		return t.discard()
	}
	if t.accounts != nil && t.history != nil {
		if err := t.db.stamp(t, time.Now().UnixMilli()); err != nil {
			return errors.Join(fmt.Errorf("stamp commit: %w", err), t.discard())
		}
	}
	if t.accounts != nil {
		if err := t.accounts.Commit(); err != nil {
			return errors.Join(
				fmt.Errorf("commit account state: %w", err),
				t.discard(),
			)
		}
		t.accounts = nil
	}
	if t.history != nil {
		if err := t.history.Commit(); err != nil {
			t.db.logger.Error(
				"account state committed without its history",
				"component", "database",
				"error", err,
			)
			return errors.Join(fmt.Errorf("commit history: %w", err), t.discard())
		}
		t.history = nil
	}
	return nil
}

// Rollback abandons both sides
func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	return t.discard()
}

func (t *Txn) discard() error {
	var errs []error
	if t.accounts != nil {
		if err := t.accounts.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("account state rollback: %w", err))
		}
		t.accounts = nil
	}
	if t.history != nil {
		if err := t.history.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("history rollback: %w", err))
		}
		t.history = nil
	}
	return errors.Join(errs...)
}

// Release is Rollback for deferred calls. Errors are logged.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
		)
	}
}
