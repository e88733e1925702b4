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
	"github.com/blinklabs-io/linkboard/database/models"
)

// History calls run inside txn when it has a history side, and against the
// committed store otherwise.

// GetTransaction returns the processed transaction with the given hash, or
// nil if none has been recorded
func (d *Database) GetTransaction(
	hash []byte,
	txn *Txn,
) (*models.Transaction, error) {
	return d.metadata.GetTransactionByHash(hash, txn.historyTxn())
}

// SetTransaction records a processed transaction
func (d *Database) SetTransaction(tx *models.Transaction, txn *Txn) error {
	return d.metadata.SetTransaction(tx, txn.historyTxn())
}

// GetTransactions returns up to limit recently processed transactions,
// newest first
func (d *Database) GetTransactions(
	limit int,
	txn *Txn,
) ([]models.Transaction, error) {
	return d.metadata.GetTransactions(limit, txn.historyTxn())
}

// GetAccountTransactions returns up to limit recently processed
// transactions that referenced address, newest first
func (d *Database) GetAccountTransactions(
	address []byte,
	limit int,
	txn *Txn,
) ([]models.Transaction, error) {
	return d.metadata.GetTransactionsByAccount(
		address,
		limit,
		txn.historyTxn(),
	)
}
