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

package api

import (
	"context"

	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/registry"
)

// Node is the interface the API server uses to reach the ledger. It is
// satisfied by *ledger.LedgerState and decouples the HTTP layer for tests.
type Node interface {
	// Submit authenticates and processes a transaction
	Submit(ctx context.Context, tx *ledger.Transaction) (*ledger.Receipt, error)

	// Airdrop credits an address from the development faucet
	Airdrop(ctx context.Context, to registry.Identity, amount uint64) error

	// Account returns the state of an account
	Account(address registry.Identity) (*ledger.AccountInfo, error)

	// Registry returns the record stored in a registry account
	Registry(address registry.Identity) (*registry.Record, error)

	// Registries lists registry account addresses
	Registries() ([]registry.Identity, error)

	// Transaction returns a processed transaction by hash
	Transaction(hash ledger.TransactionHash) (*models.Transaction, error)

	// Transactions lists recent transactions, optionally for one account
	Transactions(address registry.Identity, limit int) ([]models.Transaction, error)
}
