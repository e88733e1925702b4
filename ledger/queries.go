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
	"errors"
	"fmt"

	"github.com/blinklabs-io/linkboard/database"
	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
)

// AccountInfo is the public view of a ledger account
type AccountInfo struct {
	Address        registry.Identity `json:"address"`
	Owner          registry.Identity `json:"owner"`
	Balance        uint64            `json:"balance"`
	MinimumBalance uint64            `json:"minimumBalance"`
	DataLength     int               `json:"dataLength"`
}

// Account returns the state of an account. Unknown addresses are reported
// as empty system accounts.
func (ls *LedgerState) Account(address registry.Identity) (*AccountInfo, error) {
	acct, err := ls.db.GetAccount(address.Bytes(), nil)
	if err != nil {
		if !errors.Is(err, database.ErrAccountNotFound) {
			return nil, err
		}
		acct = &database.Account{}
	}
	ret := &AccountInfo{
		Address:    address,
		Owner:      registry.Identity(acct.Owner),
		Balance:    acct.Balance,
		DataLength: len(acct.Data),
	}
	if len(acct.Data) > 0 {
		ret.MinimumBalance = MinimumBalance(uint64(len(acct.Data)))
	}
	return ret, nil
}

// Registry decodes the registry record stored at address
func (ls *LedgerState) Registry(address registry.Identity) (*registry.Record, error) {
	acct, err := ls.db.GetAccount(address.Bytes(), nil)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotRegistry, address)
		}
		return nil, err
	}
	if registry.Identity(acct.Owner) != program.ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistry, address)
	}
	rec, err := registry.Decode(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRegistry, err)
	}
	return rec, nil
}

// Registries returns the address of every registry account
func (ls *LedgerState) Registries() ([]registry.Identity, error) {
	txn := ls.db.AccountTransaction(false)
	defer txn.Release()
	addrs, err := ls.db.AccountAddresses(txn)
	if err != nil {
		return nil, err
	}
	var ret []registry.Identity
	for _, addr := range addrs {
		acct, err := ls.db.GetAccount(addr, txn)
		if err != nil {
			return nil, err
		}
		if registry.Identity(acct.Owner) != program.ProgramID {
			continue
		}
		id, err := registry.IdentityFromBytes(addr)
		if err != nil {
			return nil, err
		}
		ret = append(ret, id)
	}
	return ret, nil
}

// Transaction returns the history record of a processed transaction
func (ls *LedgerState) Transaction(hash TransactionHash) (*models.Transaction, error) {
	ret, err := ls.db.GetTransaction(hash[:], nil)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash)
	}
	return ret, nil
}

// Transactions returns up to limit recent transactions, newest first. A
// zero address lists transactions for all accounts.
func (ls *LedgerState) Transactions(
	address registry.Identity,
	limit int,
) ([]models.Transaction, error) {
	if address.IsZero() {
		return ls.db.GetTransactions(limit, nil)
	}
	return ls.db.GetAccountTransactions(address.Bytes(), limit, nil)
}
