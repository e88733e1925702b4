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

// AccountTransaction maps an account to a transaction that referenced it
type AccountTransaction struct {
	Address       []byte `gorm:"index:idx_account_tx_address;size:32"`
	ID            uint   `gorm:"primaryKey"`
	TransactionID uint   `gorm:"index"`
	Writable      bool
}

func (AccountTransaction) TableName() string {
	return "account_transaction"
}
