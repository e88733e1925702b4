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

package models

import "time"

const (
	TransactionStatusApplied = "applied"
	TransactionStatusFailed  = "failed"
)

// Transaction represents a processed transaction, applied or failed
type Transaction struct {
	CreatedAt time.Time
	Accounts  []AccountTransaction `gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:CASCADE"`
	Hash      []byte               `gorm:"uniqueIndex;size:32"`
	Signer    []byte               `gorm:"index;size:32"`
	Op        string               `gorm:"index"`
	Status    string
	Error     string
	Nonce     uint64
	ID        uint `gorm:"primaryKey"`
}

func (Transaction) TableName() string {
	return "transaction"
}

// Failed reports whether the transaction was rejected after being accepted
// for processing
func (t *Transaction) Failed() bool {
	return t.Status == TransactionStatusFailed
}
