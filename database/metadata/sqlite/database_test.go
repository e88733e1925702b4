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
	"testing"

	"github.com/blinklabs-io/linkboard/database/models"
	"github.com/blinklabs-io/linkboard/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testTransaction(hash byte, accounts ...byte) *models.Transaction {
	tx := &models.Transaction{
		Hash:   []byte{hash},
		Op:     "vote",
		Status: models.TransactionStatusApplied,
		Nonce:  uint64(hash),
	}
	for _, acct := range accounts {
		tx.Accounts = append(
			tx.Accounts,
			models.AccountTransaction{Address: []byte{acct}, Writable: true},
		)
	}
	return tx
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	require.NoError(t, store1.SetTransaction(testTransaction(1), nil))
	got, err := store2.GetTransactionByHash([]byte{1}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionHistory(t *testing.T) {
	store := newTestStore(t)
	for i := byte(1); i <= 3; i++ {
		require.NoError(t, store.SetTransaction(testTransaction(i, 0xaa, i), nil))
	}
	got, err := store.GetTransactionByHash([]byte{2}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.Nonce)
	assert.Len(t, got.Accounts, 2)

	recent, err := store.GetTransactions(2, nil)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []byte{3}, recent[0].Hash)
	assert.Equal(t, []byte{2}, recent[1].Hash)

	byAccount, err := store.GetTransactionsByAccount([]byte{0xaa}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, byAccount, 3)
	byAccount, err = store.GetTransactionsByAccount([]byte{1}, 10, nil)
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, []byte{1}, byAccount[0].Hash)
}

func TestDuplicateHashRejected(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetTransaction(testTransaction(1), nil))
	require.Error(t, store.SetTransaction(testTransaction(1), nil))
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetTransaction(testTransaction(1), txn))
	got, err := store.GetTransactionByHash([]byte{1}, txn)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NoError(t, txn.Rollback())

	_, err = store.GetTransactionByHash([]byte{1}, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)
	got, err = store.GetTransactionByHash([]byte{1}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.CommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(1234, txn))
	// Visible inside the transaction before it commits
	ts, err = store.CommitTimestamp(txn)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), ts)
	require.NoError(t, txn.Commit())
	// Overwrites the single row
	require.NoError(t, store.SetCommitTimestamp(5678, nil))
	ts, err = store.CommitTimestamp(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5678), ts)
}

func TestPersistentStore(t *testing.T) {
	dataDir := t.TempDir()
	store, err := New(dataDir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.SetTransaction(testTransaction(7), nil))
	require.NoError(t, store.runVacuum())
	require.NoError(t, store.Close())

	store, err = New(dataDir, nil, nil)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetTransactionByHash([]byte{7}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
}
