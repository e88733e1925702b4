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
	"encoding/hex"
	"time"

	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/registry"
)

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the body of every non-2xx response. Receipt is set when
// a transaction was processed and failed.
type ErrorResponse struct {
	Receipt    *ledger.Receipt `json:"receipt,omitempty"`
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code"`
}

type EntryResponse struct {
	Link      string            `json:"link"`
	Submitter registry.Identity `json:"submitter"`
	Index     int               `json:"index"`
	Votes     uint64            `json:"votes"`
}

type RegistryResponse struct {
	Entries    []EntryResponse   `json:"entries"`
	Address    registry.Identity `json:"address"`
	EntryCount uint64            `json:"entry_count"`
	VoteCount  uint64            `json:"vote_count"`
}

func newRegistryResponse(
	address registry.Identity,
	rec *registry.Record,
) RegistryResponse {
	ret := RegistryResponse{
		Address:    address,
		EntryCount: rec.EntryCount,
		VoteCount:  rec.VoteCount,
		Entries:    make([]EntryResponse, 0, len(rec.Entries)),
	}
	for idx, entry := range rec.Entries {
		ret.Entries = append(ret.Entries, EntryResponse{
			Index:     idx,
			Link:      entry.Link,
			Submitter: entry.Submitter,
			Votes:     entry.Votes,
		})
	}
	return ret
}

type TransactionAccountResponse struct {
	Address  string `json:"address"`
	Writable bool   `json:"writable"`
}

type TransactionResponse struct {
	CreatedAt time.Time                    `json:"created_at"`
	Hash      string                       `json:"hash"`
	Op        string                       `json:"op"`
	Status    string                       `json:"status"`
	Error     string                       `json:"error,omitempty"`
	Signer    string                       `json:"signer,omitempty"`
	Accounts  []TransactionAccountResponse `json:"accounts,omitempty"`
	Nonce     uint64                       `json:"nonce"`
}

func formatAddress(b []byte) string {
	id, err := registry.IdentityFromBytes(b)
	if err != nil {
		return hex.EncodeToString(b)
	}
	if id.IsZero() {
		return ""
	}
	return id.String()
}

func newTransactionResponse(tx *models.Transaction) TransactionResponse {
	ret := TransactionResponse{
		CreatedAt: tx.CreatedAt,
		Hash:      hex.EncodeToString(tx.Hash),
		Op:        tx.Op,
		Status:    tx.Status,
		Error:     tx.Error,
		Signer:    formatAddress(tx.Signer),
		Nonce:     tx.Nonce,
	}
	for _, acct := range tx.Accounts {
		ret.Accounts = append(ret.Accounts, TransactionAccountResponse{
			Address:  formatAddress(acct.Address),
			Writable: acct.Writable,
		})
	}
	return ret
}

type FaucetRequest struct {
	Address registry.Identity `json:"address"`
	Amount  uint64            `json:"amount"`
}
