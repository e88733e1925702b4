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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/database/types"
	"gorm.io/gorm"
)

// GetTransactionByHash returns a processed transaction by its hash, or nil if
// it is unknown
func (d *MetadataStoreSqlite) GetTransactionByHash(
	hash []byte,
	txn types.Txn,
) (*models.Transaction, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Transaction{}
	result := db.Preload("Accounts").First(ret, "hash = ?", hash)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetTransaction records a processed transaction
func (d *MetadataStoreSqlite) SetTransaction(
	tx *models.Transaction,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(tx).Error
}

// GetTransactions returns the most recent transactions, newest first
func (d *MetadataStoreSqlite) GetTransactions(
	limit int,
	txn types.Txn,
) ([]models.Transaction, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Transaction
	result := db.Order("id DESC").Limit(limit).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetTransactionsByAccount returns the most recent transactions that
// referenced the given account, newest first
func (d *MetadataStoreSqlite) GetTransactionsByAccount(
	account []byte,
	limit int,
	txn types.Txn,
) ([]models.Transaction, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Transaction
	subQuery := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.AccountTransaction{}).
		Select("transaction_id").
		Where("address = ?", account)
	result := db.
		Where("id IN (?)", subQuery).
		Order("id DESC").
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
