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

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/linkboard/database/types"
)

const accountBlobKeyPrefix = "acct:"

var ErrAccountNotFound = errors.New("account not found")

// Account is the stored state of a single ledger account
type Account struct {
	cbor.StructAsArray
	Balance uint64
	Owner   [32]byte
	Data    []byte
}

// AccountBlobKey returns the blob key for an account address
func AccountBlobKey(address []byte) []byte {
	key := make([]byte, 0, len(accountBlobKeyPrefix)+len(address))
	key = append(key, accountBlobKeyPrefix...)
	key = append(key, address...)
	return key
}

// GetAccount returns the stored account at address, or ErrAccountNotFound
func (d *Database) GetAccount(address []byte, txn *Txn) (*Account, error) {
	if txn == nil {
		txn = d.AccountTransaction(false)
		defer txn.Release()
	}
	if txn.accountTxn() == nil {
		return nil, types.ErrNilTxn
	}
	val, err := d.blob.Get(txn.accountTxn(), AccountBlobKey(address))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	ret := &Account{}
	if _, err := cbor.Decode(val, ret); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return ret, nil
}

// SetAccount stores the account at address
func (d *Database) SetAccount(
	address []byte,
	account *Account,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.AccountTransaction(true)
		owned = true
		defer txn.Release()
	}
	if txn.accountTxn() == nil {
		return types.ErrNilTxn
	}
	val, err := cbor.Encode(account)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	if err := d.blob.Set(txn.accountTxn(), AccountBlobKey(address), val); err != nil {
		return err
	}
	if owned {
		return txn.Commit()
	}
	return nil
}

// AccountAddresses returns the address of every stored account
func (d *Database) AccountAddresses(txn *Txn) ([][]byte, error) {
	if txn == nil {
		txn = d.AccountTransaction(false)
		defer txn.Release()
	}
	if txn.accountTxn() == nil {
		return nil, types.ErrNilTxn
	}
	keys, err := d.blob.Keys(txn.accountTxn(), []byte(accountBlobKeyPrefix))
	if err != nil {
		return nil, err
	}
	ret := make([][]byte, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, key[len(accountBlobKeyPrefix):])
	}
	return ret, nil
}
