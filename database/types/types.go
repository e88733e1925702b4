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

// Package types holds what the blob and metadata stores share
package types

import "errors"

var (
	// ErrBlobKeyNotFound is returned by a blob read of a missing key
	ErrBlobKeyNotFound = errors.New("blob key not found")
	// ErrNilTxn is returned when an operation needs a transaction and got none
	ErrNilTxn = errors.New("nil transaction")
	// ErrTxnWrongType is returned when a store is handed another store's transaction
	ErrTxnWrongType = errors.New("invalid transaction type")
	// ErrTxnFinished is returned when a committed or rolled back transaction is used
	ErrTxnFinished = errors.New("transaction already finished")
)

// Txn is one store's side of a database.Txn
type Txn interface {
	Commit() error
	Rollback() error
}
